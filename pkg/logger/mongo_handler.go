package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// MongoSinkOptions configures where and how long log records are kept.
type MongoSinkOptions struct {
	URI        string
	Database   string
	Collection string
	Level      slog.Level
	// TTL expires records this long after they were logged. Zero keeps them.
	TTL time.Duration
}

// LogRecord is the document written per log line.
type LogRecord struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// MongoHandler is a slog.Handler that batches records into a MongoDB
// collection from a background goroutine. Handle never blocks; records that
// do not fit the queue are counted in Dropped and discarded.
type MongoHandler struct {
	*mongoSink
	attrs []groupedAttr
	group string
}

// groupedAttr keeps the group prefix that was open when WithAttrs ran.
type groupedAttr struct {
	prefix string
	attr   slog.Attr
}

type mongoSink struct {
	col     *mongo.Collection
	client  *mongo.Client
	level   slog.Level
	queue   chan LogRecord
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewMongoHandler connects, ensures the time index (with TTL when set) and
// starts shipping. The caller must eventually call Close.
func NewMongoHandler(ctx context.Context, o MongoSinkOptions) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.URI).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("mongo log sink: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo log sink: ping: %w", err)
	}

	col := client.Database(o.Database).Collection(o.Collection)
	if err := ensureTimeIndex(ctx, col, o.TTL); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	h := newMongoHandler(col, o.Level)
	h.client = client
	return h, nil
}

func ensureTimeIndex(ctx context.Context, col *mongo.Collection, ttl time.Duration) error {
	idx := options.Index()
	if ttl > 0 {
		idx.SetExpireAfterSeconds(int32(ttl / time.Second))
	}
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "time", Value: 1}},
		Options: idx,
	})
	if err != nil {
		return fmt.Errorf("mongo log sink: time index: %w", err)
	}
	return nil
}

// newMongoHandler starts a sink on an existing collection.
func newMongoHandler(col *mongo.Collection, level slog.Level) *MongoHandler {
	s := &mongoSink{
		col:     col,
		level:   level,
		queue:   make(chan LogRecord, mongoQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.drainLoop()
	return &MongoHandler{mongoSink: s}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{
		Time:  r.Time.UTC(),
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: bson.M{},
	}

	collect := func(prefix string, a slog.Attr) {
		if a.Key == "" {
			return
		}
		if prefix == "" && a.Key == "request_id" {
			rec.RequestID = a.Value.String()
			return
		}
		rec.Attrs[joinKey(prefix, a.Key)] = attrValue(a.Value)
	}
	for _, ga := range h.attrs {
		collect(ga.prefix, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(h.group, a)
		return true
	})
	if len(rec.Attrs) == 0 {
		rec.Attrs = nil
	}

	select {
	case h.queue <- rec:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// attrValue converts values BSON cannot encode as-is.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindGroup:
		m := bson.M{}
		for _, a := range v.Group() {
			m[a.Key] = attrValue(a.Value)
		}
		return m
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.Any()
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]groupedAttr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, groupedAttr{prefix: h.group, attr: a})
	}
	return &clone
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

// Dropped is the number of records discarded because the queue was full.
func (h *MongoHandler) Dropped() int64 { return h.dropped.Load() }

func (s *mongoSink) drainLoop() {
	defer close(s.stopped)

	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]any, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = s.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-s.queue:
			batch = append(batch, rec)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case rec := <-s.queue:
					batch = append(batch, rec)
					if len(batch) >= mongoBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close flushes queued records, then disconnects. Safe to call more than
// once.
func (h *MongoHandler) Close() {
	h.once.Do(func() {
		close(h.done)
		<-h.stopped
		if h.client == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.client.Disconnect(ctx)
	})
}

// MultiHandler fans a record out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: hs}
}
