package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartsync/pkg/bridge/mqtt"
	"github.com/robotalks/uartsync/pkg/bridge/websocket"
	"github.com/robotalks/uartsync/pkg/config"
	"github.com/robotalks/uartsync/pkg/framework"
	"github.com/robotalks/uartsync/pkg/link"
	"github.com/robotalks/uartsync/pkg/uart"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	if conf.Serial.Device == "" {
		log.Fatalln("serial device required, see -device")
	}
	l, err := link.New(conf)
	if err != nil {
		log.Fatalln(err)
	}
	port, err := uart.OpenSerial(conf.Serial)
	if err != nil {
		log.Fatalln(err)
	}

	runner := framework.NewRunner().HandleSignals()
	runner.StopOnError = true

	if conf.BrokerURL != "" {
		pub, err := mqtt.NewPublisher(conf.BrokerURL, mqtt.Meta{
			DeviceID: conf.ClientID(),
			Serial:   conf.Serial.Device,
			Baud:     conf.Serial.Baud,
			Header:   conf.Header.String(),
			FrameLen: l.Layout.FrameLen(),
			DataLen:  l.Layout.DataLen,
			CRC:      conf.CRC,
		})
		if err != nil {
			log.Fatalln(err)
		}
		pub.Stats, pub.StatsInterval = l.Counters, conf.StatsInterval
		pub.Control = l.Control
		l.AddSink(pub)
		runner.Go(pub)
	}
	if conf.ListenAddr != "" {
		tap := websocket.New(conf.ListenAddr)
		tap.Stats, tap.StatsInterval = l.Counters, conf.StatsInterval
		l.AddSink(tap)
		runner.Go(tap)
	}

	var lastConnected bool
	runner.Go(
		framework.NamedRun("link", framework.RunnableFunc(func(ctx context.Context) error {
			return framework.RunWithContextCloser(ctx, port, func() error {
				return l.Run(ctx, port)
			})
		})),
		framework.NamedRun("stats", framework.Every(conf.StatsInterval, func(t time.Time) {
			c := l.Counters()
			if c.Connected != lastConnected {
				lastConnected = c.Connected
				glog.Infof("link connected=%v state=%s", c.Connected, c.State)
			}
			glog.V(1).Infof("counters: %s", c)
		})),
	)
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
