package events

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Recorder writes events to the log and forwards the ones listed in publish
// to the broker. Broker failures are logged, not returned.
type Recorder struct {
	repo    *Repo
	pub     Publisher
	publish map[string]bool
	log     *zap.Logger
}

func NewRecorder(repo *Repo, pub Publisher, log *zap.Logger, publish ...string) *Recorder {
	if pub == nil {
		pub = Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	set := make(map[string]bool, len(publish))
	for _, t := range publish {
		set[t] = true
	}
	return &Recorder{repo: repo, pub: pub, publish: set, log: log}
}

func (r *Recorder) Record(ctx context.Context, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	e := Event{Type: typ, Key: key, Data: data}
	if r.repo != nil {
		if err := r.repo.Append(ctx, e); err != nil {
			return err
		}
	}
	if r.publish[typ] {
		body, _ := json.Marshal(e)
		if err := r.pub.Publish(ctx, body); err != nil {
			r.log.Warn("publish event failed", zap.String("type", typ), zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (r *Recorder) List(ctx context.Context, key string, after int64, limit int) ([]Event, error) {
	if r.repo == nil {
		return []Event{}, nil
	}
	return r.repo.List(ctx, key, after, limit)
}
