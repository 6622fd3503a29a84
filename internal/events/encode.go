package events

import (
	"github.com/mangas/uniswap-v3-dataset-sg/internal/wire"
)

// Encoding follows default-value-omit semantics: empty strings and
// zero-valued integers are never emitted and decode back to their zero value
// when absent. The payload field is the one exception, it is always emitted
// because its absence makes the event malformed.

// EncodeBatch encodes an ordered event sequence into the top-level Events
// wrapper. The buffer is sized exactly before writing, so encode is
// single-pass with no resizing.
func EncodeBatch(evs []Event) []byte {
	total := 0
	for i := range evs {
		total += wire.SizeTag(fieldBatchEvent) + wire.SizeBytes(evs[i].Size())
	}
	w := wire.NewWriter(total)
	for i := range evs {
		w.Tag(fieldBatchEvent, wire.TypeBytes)
		w.Varint(uint64(evs[i].Size()))
		evs[i].marshalTo(w)
	}
	return w.Bytes()
}

// Size returns the exact encoded byte length of the event envelope.
func (e *Event) Size() int {
	n := wire.SizeStringField(fieldEventOwner, e.Owner)
	n += wire.SizeStringField(fieldEventAddress, e.Address)
	n += wire.SizeStringField(fieldEventTxHash, e.TxHash)
	n += wire.SizeUint64Field(fieldEventTxGasUsed, e.TxGasUsed)
	n += wire.SizeStringField(fieldEventTxGasPrice, e.TxGasPrice)
	n += wire.SizeUint64Field(fieldEventBlockNumber, e.BlockNumber)
	n += wire.SizeStringField(fieldEventBlockTimestamp, e.BlockTimestamp)
	n += wire.SizeUint64Field(fieldEventType, uint64(e.Type))
	if e.Payload != nil {
		n += wire.SizeTag(payloadFieldBase+int(e.Payload.Kind())) + wire.SizeBytes(e.Payload.Size())
	}
	return n
}

// Marshal encodes a single event envelope.
func (e *Event) Marshal() []byte {
	w := wire.NewWriter(e.Size())
	e.marshalTo(w)
	return w.Bytes()
}

func (e *Event) marshalTo(w *wire.Writer) {
	writeString(w, fieldEventOwner, e.Owner)
	writeString(w, fieldEventAddress, e.Address)
	writeString(w, fieldEventTxHash, e.TxHash)
	writeUint64(w, fieldEventTxGasUsed, e.TxGasUsed)
	writeString(w, fieldEventTxGasPrice, e.TxGasPrice)
	writeUint64(w, fieldEventBlockNumber, e.BlockNumber)
	writeString(w, fieldEventBlockTimestamp, e.BlockTimestamp)
	writeUint64(w, fieldEventType, uint64(e.Type))
	if e.Payload != nil {
		w.Tag(payloadFieldBase+int(e.Payload.Kind()), wire.TypeBytes)
		w.Varint(uint64(e.Payload.Size()))
		e.Payload.marshalTo(w)
	}
}

func writeString(w *wire.Writer, field int, s string) {
	if s == "" {
		return
	}
	w.Tag(field, wire.TypeBytes)
	w.String(s)
}

func writeUint64(w *wire.Writer, field int, v uint64) {
	if v == 0 {
		return
	}
	w.Tag(field, wire.TypeVarint)
	w.Varint(v)
}

func writeSint32(w *wire.Writer, field int, v int32) {
	if v == 0 {
		return
	}
	w.Tag(field, wire.TypeVarint)
	w.Sint32(v)
}

func (m *PoolCreated) Size() int {
	return wire.SizeStringField(1, m.Token0) +
		wire.SizeStringField(2, m.Token1) +
		wire.SizeUint64Field(3, m.FeeTier) +
		wire.SizeSint32Field(4, m.TickSpacing) +
		wire.SizeStringField(5, m.PoolAddress)
}

func (m *PoolCreated) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.Token0)
	writeString(w, 2, m.Token1)
	writeUint64(w, 3, m.FeeTier)
	writeSint32(w, 4, m.TickSpacing)
	writeString(w, 5, m.PoolAddress)
}

func (m *IncreaseLiquidity) Size() int {
	return wire.SizeStringField(1, m.TokenID) +
		wire.SizeStringField(2, m.Liquidity) +
		wire.SizeStringField(3, m.Amount0) +
		wire.SizeStringField(4, m.Amount1)
}

func (m *IncreaseLiquidity) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.TokenID)
	writeString(w, 2, m.Liquidity)
	writeString(w, 3, m.Amount0)
	writeString(w, 4, m.Amount1)
}

func (m *DecreaseLiquidity) Size() int {
	return wire.SizeStringField(1, m.TokenID) +
		wire.SizeStringField(2, m.Liquidity) +
		wire.SizeStringField(3, m.Amount0) +
		wire.SizeStringField(4, m.Amount1)
}

func (m *DecreaseLiquidity) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.TokenID)
	writeString(w, 2, m.Liquidity)
	writeString(w, 3, m.Amount0)
	writeString(w, 4, m.Amount1)
}

func (m *Collect) Size() int {
	return wire.SizeStringField(1, m.TokenID) +
		wire.SizeStringField(2, m.Recipient) +
		wire.SizeStringField(3, m.Amount0) +
		wire.SizeStringField(4, m.Amount1)
}

func (m *Collect) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.TokenID)
	writeString(w, 2, m.Recipient)
	writeString(w, 3, m.Amount0)
	writeString(w, 4, m.Amount1)
}

func (m *Transfer) Size() int {
	return wire.SizeStringField(1, m.TokenID) +
		wire.SizeStringField(2, m.From) +
		wire.SizeStringField(3, m.To)
}

func (m *Transfer) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.TokenID)
	writeString(w, 2, m.From)
	writeString(w, 3, m.To)
}

func (m *Initialize) Size() int {
	return wire.SizeStringField(1, m.SqrtPrice) +
		wire.SizeStringField(2, m.Tick)
}

func (m *Initialize) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.SqrtPrice)
	writeString(w, 2, m.Tick)
}

func (m *Swap) Size() int {
	return wire.SizeStringField(1, m.Sender) +
		wire.SizeStringField(2, m.Recipient) +
		wire.SizeStringField(3, m.Amount0) +
		wire.SizeStringField(4, m.Amount1) +
		wire.SizeStringField(5, m.SqrtPrice) +
		wire.SizeStringField(6, m.Liquidity) +
		wire.SizeStringField(7, m.Tick)
}

func (m *Swap) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.Sender)
	writeString(w, 2, m.Recipient)
	writeString(w, 3, m.Amount0)
	writeString(w, 4, m.Amount1)
	writeString(w, 5, m.SqrtPrice)
	writeString(w, 6, m.Liquidity)
	writeString(w, 7, m.Tick)
}

func (m *Mint) Size() int {
	return wire.SizeStringField(1, m.Sender) +
		wire.SizeStringField(2, m.Owner) +
		wire.SizeStringField(3, m.TickLower) +
		wire.SizeStringField(4, m.TickUpper) +
		wire.SizeStringField(5, m.Amount) +
		wire.SizeStringField(6, m.Amount0) +
		wire.SizeStringField(7, m.Amount1)
}

func (m *Mint) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.Sender)
	writeString(w, 2, m.Owner)
	writeString(w, 3, m.TickLower)
	writeString(w, 4, m.TickUpper)
	writeString(w, 5, m.Amount)
	writeString(w, 6, m.Amount0)
	writeString(w, 7, m.Amount1)
}

func (m *Burn) Size() int {
	return wire.SizeStringField(1, m.Owner) +
		wire.SizeStringField(2, m.TickLower) +
		wire.SizeStringField(3, m.TickUpper) +
		wire.SizeStringField(4, m.Amount) +
		wire.SizeStringField(5, m.Amount0) +
		wire.SizeStringField(6, m.Amount1)
}

func (m *Burn) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.Owner)
	writeString(w, 2, m.TickLower)
	writeString(w, 3, m.TickUpper)
	writeString(w, 4, m.Amount)
	writeString(w, 5, m.Amount0)
	writeString(w, 6, m.Amount1)
}

func (m *Flash) Size() int {
	return wire.SizeStringField(1, m.Sender) +
		wire.SizeStringField(2, m.Amount0) +
		wire.SizeStringField(3, m.Amount1) +
		wire.SizeStringField(4, m.Paid0) +
		wire.SizeStringField(5, m.Paid1)
}

func (m *Flash) marshalTo(w *wire.Writer) {
	writeString(w, 1, m.Sender)
	writeString(w, 2, m.Amount0)
	writeString(w, 3, m.Amount1)
	writeString(w, 4, m.Paid0)
	writeString(w, 5, m.Paid1)
}
