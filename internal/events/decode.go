package events

import (
	"fmt"

	"github.com/mangas/uniswap-v3-dataset-sg/internal/wire"
)

// Envelope field numbers. The payload occupies fields 9 through 18, one per
// variant, at offset payloadFieldBase + Type.
const (
	fieldEventOwner          = 1
	fieldEventAddress        = 2
	fieldEventTxHash         = 3
	fieldEventTxGasUsed      = 4
	fieldEventTxGasPrice     = 5
	fieldEventBlockNumber    = 6
	fieldEventBlockTimestamp = 7
	fieldEventType           = 8
	payloadFieldBase         = 9

	fieldBatchEvent = 1
)

// DecodeBatch decodes a top-level Events wrapper into its ordered event
// sequence. Any error is fatal for the whole batch: decode happens before
// dispatch, so no entity mutation has occurred yet.
func DecodeBatch(data []byte) ([]Event, error) {
	r := wire.NewReader(data)
	var out []Event
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return nil, fmt.Errorf("batch tag: %w", err)
		}
		if field != fieldBatchEvent {
			if err := r.Skip(wireType); err != nil {
				return nil, fmt.Errorf("batch skip field %d: %w", field, err)
			}
			continue
		}
		if wireType != wire.TypeBytes {
			return nil, fmt.Errorf("batch event field: wire type %d", wireType)
		}
		sub, err := r.Delimited()
		if err != nil {
			return nil, fmt.Errorf("batch event %d: %w", len(out), err)
		}
		var ev Event
		if err := ev.Unmarshal(sub); err != nil {
			return nil, fmt.Errorf("batch event %d: %w", len(out), err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// Unmarshal decodes one event envelope. Exactly one payload variant must be
// present and it must correspond to the type discriminant.
func (e *Event) Unmarshal(data []byte) error {
	r := wire.NewReader(data)
	var payloadField int
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch {
		case field == fieldEventOwner:
			if e.Owner, err = r.String(); err != nil {
				return err
			}
		case field == fieldEventAddress:
			if e.Address, err = r.String(); err != nil {
				return err
			}
		case field == fieldEventTxHash:
			if e.TxHash, err = r.String(); err != nil {
				return err
			}
		case field == fieldEventTxGasUsed:
			if e.TxGasUsed, err = r.Varint(); err != nil {
				return err
			}
		case field == fieldEventTxGasPrice:
			if e.TxGasPrice, err = r.String(); err != nil {
				return err
			}
		case field == fieldEventBlockNumber:
			if e.BlockNumber, err = r.Varint(); err != nil {
				return err
			}
		case field == fieldEventBlockTimestamp:
			if e.BlockTimestamp, err = r.String(); err != nil {
				return err
			}
		case field == fieldEventType:
			v, err := r.Int32()
			if err != nil {
				return err
			}
			e.Type = Type(v)
		case field >= payloadFieldBase && field < payloadFieldBase+int(typeCount):
			if e.Payload != nil {
				return fmt.Errorf("event: multiple payload variants")
			}
			sub, err := r.Delimited()
			if err != nil {
				return err
			}
			payload := newPayload(Type(field - payloadFieldBase))
			if err := payload.unmarshal(sub); err != nil {
				return fmt.Errorf("%s payload: %w", payload.Kind(), err)
			}
			e.Payload = payload
			payloadField = field
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}

	if e.Type < 0 || e.Type >= typeCount {
		return fmt.Errorf("event: unknown type %d", e.Type)
	}
	if e.Payload == nil {
		return fmt.Errorf("event: type %s without payload", e.Type)
	}
	if payloadField != payloadFieldBase+int(e.Type) {
		return fmt.Errorf("event: type %s with %s payload", e.Type, e.Payload.Kind())
	}
	return nil
}

func (m *PoolCreated) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Token0, err = r.String(); err != nil {
				return err
			}
		case 2:
			if m.Token1, err = r.String(); err != nil {
				return err
			}
		case 3:
			if m.FeeTier, err = r.Varint(); err != nil {
				return err
			}
		case 4:
			if m.TickSpacing, err = r.Sint32(); err != nil {
				return err
			}
		case 5:
			if m.PoolAddress, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *IncreaseLiquidity) unmarshal(data []byte) error {
	var f liquidityChangeFields
	if err := f.unmarshal(data); err != nil {
		return err
	}
	m.TokenID, m.Liquidity, m.Amount0, m.Amount1 = f.tokenID, f.liquidity, f.amount0, f.amount1
	return nil
}

func (m *DecreaseLiquidity) unmarshal(data []byte) error {
	var f liquidityChangeFields
	if err := f.unmarshal(data); err != nil {
		return err
	}
	m.TokenID, m.Liquidity, m.Amount0, m.Amount1 = f.tokenID, f.liquidity, f.amount0, f.amount1
	return nil
}

// liquidityChangeFields is the shared layout of IncreaseLiquidity and
// DecreaseLiquidity.
type liquidityChangeFields struct {
	tokenID   string
	liquidity string
	amount0   string
	amount1   string
}

func (f *liquidityChangeFields) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if f.tokenID, err = r.String(); err != nil {
				return err
			}
		case 2:
			if f.liquidity, err = r.String(); err != nil {
				return err
			}
		case 3:
			if f.amount0, err = r.String(); err != nil {
				return err
			}
		case 4:
			if f.amount1, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Collect) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.TokenID, err = r.String(); err != nil {
				return err
			}
		case 2:
			if m.Recipient, err = r.String(); err != nil {
				return err
			}
		case 3:
			if m.Amount0, err = r.String(); err != nil {
				return err
			}
		case 4:
			if m.Amount1, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Transfer) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.TokenID, err = r.String(); err != nil {
				return err
			}
		case 2:
			if m.From, err = r.String(); err != nil {
				return err
			}
		case 3:
			if m.To, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Initialize) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.SqrtPrice, err = r.String(); err != nil {
				return err
			}
		case 2:
			if m.Tick, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Swap) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Sender, err = r.String(); err != nil {
				return err
			}
		case 2:
			if m.Recipient, err = r.String(); err != nil {
				return err
			}
		case 3:
			if m.Amount0, err = r.String(); err != nil {
				return err
			}
		case 4:
			if m.Amount1, err = r.String(); err != nil {
				return err
			}
		case 5:
			if m.SqrtPrice, err = r.String(); err != nil {
				return err
			}
		case 6:
			if m.Liquidity, err = r.String(); err != nil {
				return err
			}
		case 7:
			if m.Tick, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Mint) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Sender, err = r.String(); err != nil {
				return err
			}
		case 2:
			if m.Owner, err = r.String(); err != nil {
				return err
			}
		case 3:
			if m.TickLower, err = r.String(); err != nil {
				return err
			}
		case 4:
			if m.TickUpper, err = r.String(); err != nil {
				return err
			}
		case 5:
			if m.Amount, err = r.String(); err != nil {
				return err
			}
		case 6:
			if m.Amount0, err = r.String(); err != nil {
				return err
			}
		case 7:
			if m.Amount1, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Burn) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Owner, err = r.String(); err != nil {
				return err
			}
		case 2:
			if m.TickLower, err = r.String(); err != nil {
				return err
			}
		case 3:
			if m.TickUpper, err = r.String(); err != nil {
				return err
			}
		case 4:
			if m.Amount, err = r.String(); err != nil {
				return err
			}
		case 5:
			if m.Amount0, err = r.String(); err != nil {
				return err
			}
		case 6:
			if m.Amount1, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Flash) unmarshal(data []byte) error {
	r := wire.NewReader(data)
	for r.Remaining() > 0 {
		field, wireType, err := r.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			if m.Sender, err = r.String(); err != nil {
				return err
			}
		case 2:
			if m.Amount0, err = r.String(); err != nil {
				return err
			}
		case 3:
			if m.Amount1, err = r.String(); err != nil {
				return err
			}
		case 4:
			if m.Paid0, err = r.String(); err != nil {
				return err
			}
		case 5:
			if m.Paid1, err = r.String(); err != nil {
				return err
			}
		default:
			if err := r.Skip(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}
