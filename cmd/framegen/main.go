package main

//go-build: CGO_ENABLED=0

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartsync/pkg/config"
	"github.com/robotalks/uartsync/pkg/frame"
	"github.com/robotalks/uartsync/pkg/framework"
	"github.com/robotalks/uartsync/pkg/uart"
)

var (
	count       = 100
	output      = "-"
	seed        int64
	pace        bool
	impairments frame.Impairments
)

func init() {
	config.SetupFlags()
	flag.IntVar(&count, "count", count, "Number of frames, 0 for endless.")
	flag.StringVar(&output, "o", output, "Output file, - for stdout. Ignored when -device is set.")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed.")
	flag.BoolVar(&pace, "pace", pace, "Pace output at the configured baud rate.")
	flag.Float64Var(&impairments.Noise, "noise", 0, "Probability of noise before a frame.")
	flag.IntVar(&impairments.MaxNoise, "max-noise", 8, "Maximum noise bytes.")
	flag.Float64Var(&impairments.Corrupt, "corrupt", 0, "Probability of a flipped bit in a frame.")
	flag.Float64Var(&impairments.Drop, "drop", 0, "Probability of a lost byte in a frame.")
}

func openOutput(conf *config.Config) (io.WriteCloser, error) {
	if conf.Serial.Device != "" {
		return uart.OpenSerial(conf.Serial)
	}
	if output == "-" {
		return os.Stdout, nil
	}
	return os.Create(output)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	layout, err := conf.Layout()
	if err != nil {
		log.Fatalln(err)
	}
	out, err := openOutput(conf)
	if err != nil {
		log.Fatalln(err)
	}
	gen := frame.NewGenerator(layout, seed)
	gen.Impairments = impairments
	byteTime := time.Duration(conf.Serial.BitsPerByte()) * time.Second / time.Duration(conf.Serial.Baud)

	runner := framework.NewRunner().HandleSignals()
	runner.Go(framework.RunnableFunc(func(ctx context.Context) error {
		return framework.RunWithContextCloser(ctx, out, func() error {
			w := bufio.NewWriter(out)
			for n := 0; count == 0 || n < count; n++ {
				line, _, _ := gen.Next()
				if _, err := w.Write(line); err != nil {
					return err
				}
				if pace {
					if err := w.Flush(); err != nil {
						return err
					}
					time.Sleep(time.Duration(len(line)) * byteTime)
				}
				if ctx.Err() != nil {
					break
				}
			}
			return w.Flush()
		})
	}))
	err = runner.Wait()
	s := gen.Stats
	glog.Infof("frames=%d intact=%d corrupted=%d dropped=%d noise-bytes=%d",
		s.Frames, s.Intact, s.Corrupted, s.Dropped, s.NoiseBytes)
	if err != nil {
		log.Fatalln(err)
	}
}
