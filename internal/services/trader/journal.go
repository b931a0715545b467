package trader

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"
)

const (
	orderIntentKeyPrefix     = "order_intent_"
	orderIntentStatusPending = "pending"
	orderIntentStatusDone    = "done"
	orderIntentStatusFailed  = "failed"

	walSegmentThreshold = 1000
	walMaxSegments      = 100
	walDirPermissions   = 0o755
)

// orderIntentRecord is one submission attempt, persisted before the
// request leaves the process. An intent still pending after a restart
// marks an attempt whose acknowledgment was never observed and needs an
// operator's eye before anything is re-bought.
type orderIntentRecord struct {
	ClientID string          `json:"client_id"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Time     time.Time       `json:"time"`
	OrderID  string          `json:"order_id,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// intentJournal records submission attempts in a write-ahead log.
type intentJournal struct {
	wal     *gowal.Wal
	intents []*orderIntentRecord
	index   map[string]*orderIntentRecord
}

// openJournal creates the WAL directory and loads previously journaled
// intents.
func openJournal(dir string) (*intentJournal, error) {
	if err := os.MkdirAll(dir, walDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure WAL directory %s", dir)
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "log_",
		SegmentThreshold: walSegmentThreshold,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open order intent WAL")
	}

	j := &intentJournal{
		wal:   wal,
		index: make(map[string]*orderIntentRecord),
	}

	for msg := range wal.Iterator() {
		var intent orderIntentRecord
		if err := json.Unmarshal(msg.Value, &intent); err != nil {
			continue
		}
		if existing, ok := j.index[intent.ClientID]; ok {
			*existing = intent
			continue
		}
		rec := intent
		j.intents = append(j.intents, &rec)
		j.index[rec.ClientID] = &rec
	}

	return j, nil
}

// Prepare journals a new pending intent for one submission attempt.
func (j *intentJournal) Prepare(clientID string, amount decimal.Decimal, attemptTime time.Time) (*orderIntentRecord, error) {
	intent := &orderIntentRecord{
		ClientID: clientID,
		Status:   orderIntentStatusPending,
		Amount:   amount,
		Time:     attemptTime,
	}
	if err := j.persist(intent); err != nil {
		return nil, err
	}

	j.intents = append(j.intents, intent)
	j.index[intent.ClientID] = intent
	return intent, nil
}

func (j *intentJournal) MarkDone(intent *orderIntentRecord, orderID string) error {
	if intent == nil {
		return nil
	}
	intent.Status = orderIntentStatusDone
	intent.OrderID = orderID
	intent.Error = ""
	return j.persist(intent)
}

func (j *intentJournal) MarkFailed(intent *orderIntentRecord, err error) error {
	if intent == nil {
		return nil
	}
	intent.Status = orderIntentStatusFailed
	if err != nil {
		intent.Error = err.Error()
	}
	return j.persist(intent)
}

// Pending returns intents whose outcome was never recorded.
func (j *intentJournal) Pending() []*orderIntentRecord {
	var pending []*orderIntentRecord
	for _, intent := range j.intents {
		if intent.Status == orderIntentStatusPending {
			pending = append(pending, intent)
		}
	}
	return pending
}

func (j *intentJournal) Close() error {
	return j.wal.Close()
}

func (j *intentJournal) persist(intent *orderIntentRecord) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order intent")
	}
	key := fmt.Sprintf("%s%s", orderIntentKeyPrefix, intent.ClientID)
	return j.wal.Write(j.wal.CurrentIndex()+1, key, data)
}
