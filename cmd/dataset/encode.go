package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/batch"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/config"
	"github.com/mangas/uniswap-v3-dataset-sg/internal/events"
)

// eventLine is one JSONL event description: the envelope fields plus a
// type-tagged payload object.
type eventLine struct {
	Owner          string          `json:"owner"`
	Address        string          `json:"address"`
	TxHash         string          `json:"tx_hash"`
	TxGasUsed      uint64          `json:"tx_gas_used"`
	TxGasPrice     string          `json:"tx_gas_price"`
	BlockNumber    uint64          `json:"block_number"`
	BlockTimestamp string          `json:"block_timestamp"`
	Type           string          `json:"type"`
	Payload        json.RawMessage `json:"payload"`
}

func runEncode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadEncode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	in, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := batch.CreateWriter(cfg.Out)
	if err != nil {
		return err
	}

	var (
		pending      []events.Event
		pendingBlock uint64
		frames       int
		total        int
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := out.Append(events.EncodeBatch(pending)); err != nil {
			return err
		}
		frames++
		total += len(pending)
		pending = pending[:0]
		return nil
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		ev, err := parseEventLine(raw)
		if err != nil {
			out.Close()
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		// One frame per block: the aggregation engine checkpoints at
		// batch granularity.
		if len(pending) > 0 && ev.BlockNumber != pendingBlock {
			if err := flush(); err != nil {
				out.Close()
				return err
			}
		}
		pendingBlock = ev.BlockNumber
		pending = append(pending, ev)
	}
	if err := scanner.Err(); err != nil {
		out.Close()
		return fmt.Errorf("read input: %w", err)
	}

	if err := flush(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	logger.Info("encode complete",
		zap.String("out", cfg.Out),
		zap.Int("frames", frames),
		zap.Int("events", total),
	)
	return nil
}

func parseEventLine(raw []byte) (events.Event, error) {
	var line eventLine
	if err := json.Unmarshal(raw, &line); err != nil {
		return events.Event{}, fmt.Errorf("parse event: %w", err)
	}

	typ, ok := events.ParseType(line.Type)
	if !ok {
		return events.Event{}, fmt.Errorf("unknown event type %q", line.Type)
	}

	payload := events.NewPayload(typ)
	if len(line.Payload) > 0 {
		if err := json.Unmarshal(line.Payload, payload); err != nil {
			return events.Event{}, fmt.Errorf("parse %s payload: %w", line.Type, err)
		}
	}

	return events.Event{
		Owner:          line.Owner,
		Address:        line.Address,
		TxHash:         line.TxHash,
		TxGasUsed:      line.TxGasUsed,
		TxGasPrice:     line.TxGasPrice,
		BlockNumber:    line.BlockNumber,
		BlockTimestamp: line.BlockTimestamp,
		Type:           typ,
		Payload:        payload,
	}, nil
}
