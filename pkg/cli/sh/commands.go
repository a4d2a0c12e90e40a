package sh

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartsync/pkg/config"
	"github.com/robotalks/uartsync/pkg/crc"
	"github.com/robotalks/uartsync/pkg/rxsync"
)

// ParseBytes parses arguments as hex bytes, or as text when the first
// argument is prefixed with "=".
func ParseBytes(args []string) ([]byte, error) {
	if len(args) > 0 && strings.HasPrefix(args[0], "=") {
		return []byte(strings.TrimPrefix(strings.Join(args, " "), "=")), nil
	}
	var b config.HexBytes
	if err := b.Set(strings.Join(args, "")); err != nil {
		return nil, err
	}
	return b, nil
}

// ParseFault parses fault names separated by commas.
func ParseFault(s string) (rxsync.Fault, error) {
	var f rxsync.Fault
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "parity", "pe":
			f |= rxsync.FaultParity
		case "framing", "fe":
			f |= rxsync.FaultFraming
		case "noise", "ne":
			f |= rxsync.FaultNoise
		case "overrun", "ore":
			f |= rxsync.FaultOverrun
		default:
			return rxsync.FaultNone, fmt.Errorf("unknown fault %q", name)
		}
	}
	return f, nil
}

type crcResult struct {
	Name  string `json:"name"`
	Width uint   `json:"width"`
	Sum   string `json:"sum"`
}

var (
	// PresetsCmd lists the CRC presets.
	PresetsCmd = ishell.Cmd{
		Name:    "presets",
		Aliases: []string{"p"},
		Help:    "list CRC presets",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var res []crcResult
			var lines []string
			for _, p := range crc.Presets() {
				check := fmt.Sprintf("%0*x", p.Width()/4, p.Check())
				res = append(res, crcResult{Name: p.Name(), Width: p.Width(), Sum: check})
				lines = append(lines, fmt.Sprintf("%-20s %2d check=%s", p.Name(), p.Width(), check))
			}
			s.Print(c, res, strings.Join(lines, "\n"))
		},
	}

	// CRCCmd computes a checksum.
	CRCCmd = ishell.Cmd{
		Name: "crc",
		Help: "NAME HEX... | NAME =TEXT",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("NAME required"))
				return
			}
			sum, err := crc.Lookup(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			data, err := ParseBytes(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			v := fmt.Sprintf("%0*x", sum.Width()/4, sum.Sum64(data))
			ShellFrom(c).Print(c, crcResult{Name: sum.Name(), Width: sum.Width(), Sum: v}, v)
		},
	}

	// EncodeCmd encodes a frame.
	EncodeCmd = ishell.Cmd{
		Name:    "encode",
		Aliases: []string{"enc"},
		Help:    "DATA-HEX... | =TEXT",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			data, err := ParseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			b, err := s.Link.Layout.Encode(data)
			if err != nil {
				c.Err(err)
				return
			}
			out := hex.EncodeToString(b)
			s.Print(c, map[string]string{"frame": out}, out)
		},
	}

	// FeedCmd feeds raw line bytes.
	FeedCmd = ishell.Cmd{
		Name:    "feed",
		Aliases: []string{"f"},
		Help:    "HEX...",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			data, err := ParseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			s.Link.Port.Feed(data)
			s.updatePrompt()
			s.printState(c)
		},
	}

	// GenCmd feeds generated frames.
	GenCmd = ishell.Cmd{
		Name: "gen",
		Help: "[COUNT] [CORRUPT-PROB] [DROP-PROB]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			count, probs := 1, []float64{0, 0}
			if len(c.Args) > 0 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil || n <= 0 {
					c.Err(fmt.Errorf("invalid COUNT %q", c.Args[0]))
					return
				}
				count = n
			}
			for i := range probs {
				if len(c.Args) > i+1 {
					v, err := strconv.ParseFloat(c.Args[i+1], 64)
					if err != nil || v < 0 || v > 1 {
						c.Err(fmt.Errorf("invalid probability %q", c.Args[i+1]))
						return
					}
					probs[i] = v
				}
			}
			s.gen.Impairments.Corrupt, s.gen.Impairments.Drop = probs[0], probs[1]
			for i := 0; i < count; i++ {
				line, _, _ := s.gen.Next()
				s.Link.Port.Feed(line)
			}
			s.updatePrompt()
			s.printState(c)
		},
	}

	// FaultCmd injects a line fault.
	FaultCmd = ishell.Cmd{
		Name: "fault",
		Help: "parity|framing|noise|overrun[,...]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("fault kind required"))
				return
			}
			f, err := ParseFault(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s.Link.Port.SignalFault(f)
			s.updatePrompt()
			s.printState(c)
		},
	}

	// StateCmd prints the receiver state.
	StateCmd = ishell.Cmd{
		Name: "state",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).printState(c)
		},
	}

	// StatsCmd prints the counters.
	StatsCmd = ishell.Cmd{
		Name:    "stats",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			counters := s.Link.Counters()
			s.Print(c, counters, counters.String())
		},
	}

	// FramesCmd prints recently decoded frames.
	FramesCmd = ishell.Cmd{
		Name: "frames",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			frames := s.Frames()
			lines := make([]string, 0, len(frames))
			for _, f := range frames {
				lines = append(lines, fmt.Sprintf("#%d % x", f.Seq, f.Data))
			}
			s.Print(c, frames, strings.Join(lines, "\n"))
		},
	}

	// ResetCmd restarts header hunting.
	ResetCmd = ishell.Cmd{
		Name:    "reset",
		Aliases: []string{"resync"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if err := s.Link.Resync(); err != nil {
				c.Err(err)
				return
			}
			s.updatePrompt()
			s.printState(c)
		},
	}
)

type stateResult struct {
	State     string `json:"state"`
	Connected bool   `json:"connected"`
}

func (s *Shell) printState(c *ishell.Context) {
	rx := s.Link.Receiver
	res := stateResult{State: rx.State().String(), Connected: rx.IsConnected()}
	s.Print(c, res, fmt.Sprintf("%s connected=%v", res.State, res.Connected))
}
