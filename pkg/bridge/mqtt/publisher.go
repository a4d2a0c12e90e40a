package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartsync/pkg/diag"
	"github.com/robotalks/uartsync/pkg/frame"
)

// Topics relative to <prefix><device-id>/.
const (
	TopicMeta   = "meta"
	TopicFrames = "frames"
	TopicStats  = "stats"
	TopicCtl    = "ctl"
)

// DefaultQueueLen is the number of frames buffered for publishing.
const DefaultQueueLen = 64

// Meta describes the link. It is published retained and cleared by the
// will when the publisher goes away.
type Meta struct {
	DeviceID string `json:"device_id"`
	Serial   string `json:"serial,omitempty"`
	Baud     int    `json:"baud,omitempty"`
	Header   string `json:"header"`
	FrameLen int    `json:"frame_len"`
	DataLen  int    `json:"data_len"`
	CRC      string `json:"crc,omitempty"`
}

// Publisher publishes decoded frames and counters.
type Publisher struct {
	Queue *Queue
	Meta  Meta
	// Stats supplies the counters published every StatsInterval.
	Stats         func() *diag.Counters
	StatsInterval time.Duration
	// Control handles payloads received on the ctl topic.
	Control func(cmd string) error

	metaJSON []byte
	frames   chan *frame.Frame
	dropped  atomic.Uint64
	sent     atomic.Uint64
}

// NewPublisher creates a Publisher connecting to brokerURL.
func NewPublisher(brokerURL string, meta Meta) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+meta.DeviceID+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("uartsync:" + meta.DeviceID)
	}
	return NewPublisherWithQueue(NewQueue(opts, topicPrefix), meta), nil
}

// NewPublisherWithQueue creates a Publisher on an existing Queue.
func NewPublisherWithQueue(q *Queue, meta Meta) *Publisher {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		panic(err)
	}
	p := &Publisher{
		Queue:    q,
		Meta:     meta,
		metaJSON: metaJSON,
		frames:   make(chan *frame.Frame, DefaultQueueLen),
	}
	q.OnConnect = func(*Queue) { p.onConnected() }
	return p
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

func (p *Publisher) topic(name string) string {
	return p.Meta.DeviceID + "/" + name
}

// HandleFrame implements frame.Sink. Frames are dropped when the queue is
// full.
func (p *Publisher) HandleFrame(f *frame.Frame) {
	select {
	case p.frames <- f:
	default:
		if p.dropped.Add(1)%100 == 1 {
			glog.Warningf("mqtt: publish queue full, %d frames dropped", p.dropped.Load())
		}
	}
}

// Dropped returns the number of frames not published.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Sent returns the number of frames published.
func (p *Publisher) Sent() uint64 {
	return p.sent.Load()
}

// Run implements framework.Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	p.Queue.Connect()
	if p.Control != nil {
		sub := p.Queue.Sub(p.topic(TopicCtl), p.handleCtl)
		defer sub.Close()
	}
	var statsCh <-chan time.Time
	if p.Stats != nil && p.StatsInterval > 0 {
		ticker := time.NewTicker(p.StatsInterval)
		defer ticker.Stop()
		statsCh = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			p.Queue.PubWith(p.topic(TopicMeta), nil, 1, true).WaitTimeout(time.Second)
			p.Queue.Close()
			return nil
		case f := <-p.frames:
			p.publishFrame(f)
		case <-statsCh:
			p.PublishStats()
		}
	}
}

func (p *Publisher) publishFrame(f *frame.Frame) {
	data, err := diag.Marshal(diag.NewFrameEvent(f))
	if err != nil {
		glog.Errorf("mqtt: encode frame %d: %v", f.Seq, err)
		return
	}
	p.Queue.Pub(p.topic(TopicFrames), data)
	p.sent.Add(1)
}

// PublishStats publishes the current counters.
func (p *Publisher) PublishStats() {
	if p.Stats == nil {
		return
	}
	data, err := diag.Marshal(p.Stats())
	if err != nil {
		glog.Errorf("mqtt: encode counters: %v", err)
		return
	}
	p.Queue.Pub(p.topic(TopicStats), data)
}

func (p *Publisher) handleCtl(_ string, payload []byte) {
	cmd := strings.TrimSpace(string(payload))
	glog.Infof("mqtt: control %q", cmd)
	if cmd == "stats" {
		p.PublishStats()
		return
	}
	if err := p.Control(cmd); err != nil {
		glog.Warningf("mqtt: control %q: %v", cmd, err)
	}
}

func (p *Publisher) onConnected() {
	p.Queue.PubWith(p.topic(TopicMeta), p.metaJSON, 1, true)
}
