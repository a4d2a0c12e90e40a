package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sync"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/uartsync/pkg/config"
	"github.com/robotalks/uartsync/pkg/frame"
	"github.com/robotalks/uartsync/pkg/link"
)

// Shell provides ishell backed interactive shell around an offline Link.
// Bytes are fed by commands instead of a serial port.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *config.Config
	Link   *link.Link

	lock   sync.Mutex
	frames []*frame.Frame
	gen    *frame.Generator
}

const (
	shellKey = "$shell"
	// maxFrames is the number of decoded frames kept for display.
	maxFrames = 32
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PresetsCmd,
		&CRCCmd,
		&EncodeCmd,
		&FeedCmd,
		&GenCmd,
		&FaultCmd,
		&StateCmd,
		&StatsCmd,
		&FramesCmd,
		&ResetCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) (*Shell, error) {
	l, err := link.New(conf)
	if err != nil {
		return nil, err
	}
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Link:   l,
		gen:    frame.NewGenerator(l.Layout, 1),
	}
	l.AddSink(frame.SinkFunc(s.keepFrame))
	if err := l.Start(); err != nil {
		return nil, err
	}
	s.Shell.Set(shellKey, s)
	s.updatePrompt()
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s, nil
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func (s *Shell) keepFrame(f *frame.Frame) {
	s.lock.Lock()
	s.frames = append(s.frames, f)
	if len(s.frames) > maxFrames {
		s.frames = s.frames[len(s.frames)-maxFrames:]
	}
	s.lock.Unlock()
}

// Frames returns the recently decoded frames.
func (s *Shell) Frames() []*frame.Frame {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]*frame.Frame(nil), s.frames...)
}

func (s *Shell) updatePrompt() {
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", s.Link.Receiver.State()))
}

// Print prints v as JSON if requested, otherwise using text.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Println(s.Link.Layout.String())
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	s, err := New(conf)
	if err != nil {
		log.Fatalln(err)
	}
	s.Run(flag.Args()...)
}
