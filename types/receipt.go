package types

import (
	"fmt"

	"github.com/umbracle/fastrlp"
)

type ReceiptStatus uint64

const (
	ReceiptFailed ReceiptStatus = iota
	ReceiptSuccess
)

type Receipts []*Receipt

// Receipt is the outcome of applying one transaction
type Receipt struct {
	TxHash     Hash          `json:"transactionHash"`
	Status     ReceiptStatus `json:"status"`
	Logs       []*Log        `json:"logs"`
	RevertData HexBytes      `json:"revertData,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Successful returns true if the transaction did not revert
func (r *Receipt) Successful() bool {
	return r.Status == ReceiptSuccess
}

// Log is an event emitted by a contract
type Log struct {
	Address Address  `json:"address"`
	Topics  []Hash   `json:"topics"`
	Data    HexBytes `json:"data"`
}

func (l *Log) Copy() *Log {
	ll := &Log{
		Address: l.Address,
		Topics:  make([]Hash, len(l.Topics)),
		Data:    make([]byte, len(l.Data)),
	}

	copy(ll.Topics, l.Topics)
	copy(ll.Data, l.Data)

	return ll
}

func (r *Receipt) MarshalRLP() []byte {
	return MarshalRLPTo(r.MarshalRLPWith, nil)
}

func (r *Receipt) UnmarshalRLP(input []byte) error {
	return UnmarshalRlp(r.UnmarshalRLPFrom, input)
}

func (r *Receipt) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	vv := a.NewArray()
	vv.Set(a.NewBytes(r.TxHash.Bytes()))
	vv.Set(a.NewUint(uint64(r.Status)))

	logs := a.NewArray()
	for _, l := range r.Logs {
		logs.Set(l.MarshalRLPWith(a))
	}

	vv.Set(logs)
	vv.Set(a.NewCopyBytes(r.RevertData))

	return vv
}

func (r *Receipt) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 4 {
		return fmt.Errorf("incorrect number of elements to decode receipt, expected 4 but found %d", len(elems))
	}

	if err = elems[0].GetHash(r.TxHash[:]); err != nil {
		return err
	}

	status, err := elems[1].GetUint64()
	if err != nil {
		return err
	}

	r.Status = ReceiptStatus(status)

	logElems, err := elems[2].GetElems()
	if err != nil {
		return err
	}

	r.Logs = make([]*Log, len(logElems))
	for i, elem := range logElems {
		r.Logs[i] = new(Log)
		if err := r.Logs[i].UnmarshalRLPFrom(p, elem); err != nil {
			return err
		}
	}

	if r.RevertData, err = elems[3].GetBytes(r.RevertData[:0]); err != nil {
		return err
	}

	return nil
}

func (l *Log) MarshalRLPWith(a *fastrlp.Arena) *fastrlp.Value {
	v := a.NewArray()
	v.Set(a.NewBytes(l.Address.Bytes()))

	topics := a.NewArray()
	for _, t := range l.Topics {
		topics.Set(a.NewBytes(t.Bytes()))
	}

	v.Set(topics)
	v.Set(a.NewCopyBytes(l.Data))

	return v
}

func (l *Log) UnmarshalRLPFrom(_ *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 3 {
		return fmt.Errorf("incorrect number of elements to decode log, expected 3 but found %d", len(elems))
	}

	if err = elems[0].GetAddr(l.Address[:]); err != nil {
		return err
	}

	topicElems, err := elems[1].GetElems()
	if err != nil {
		return err
	}

	l.Topics = make([]Hash, len(topicElems))
	for i, topic := range topicElems {
		if err := topic.GetHash(l.Topics[i][:]); err != nil {
			return err
		}
	}

	if l.Data, err = elems[2].GetBytes(l.Data[:0]); err != nil {
		return err
	}

	return nil
}
