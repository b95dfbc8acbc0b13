package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxislabs/vocalis/pkg/archive"
	"github.com/praxislabs/vocalis/pkg/audio/capture"
	"github.com/praxislabs/vocalis/pkg/audio/pcm"
	"github.com/praxislabs/vocalis/pkg/cli"
	"github.com/praxislabs/vocalis/pkg/jsontime"
	"github.com/praxislabs/vocalis/pkg/realtime"
	"github.com/praxislabs/vocalis/pkg/voice"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a live voice session",
	Long: `Run a live voice session against the configured endpoint.

Local audio is read from a raw little-endian 16-bit PCM file (or stdin
with --input -) and streamed to the remote endpoint. The conversation
transcript is printed as it is aggregated and archived when the session
ends.

Session settings can also come from a YAML or JSON request file; flags
override whatever the file carries.

Example:
  vocalis -c staging run --input recording.pcm --rate 48000
  vocalis -c staging run --input - --text "Bonjour" < mic.pcm
  vocalis -c staging run --input recording.pcm --request scenario.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgCtx, err := getContext()
		if err != nil {
			return err
		}

		inputPath, _ := cmd.Flags().GetString("input")
		rate, _ := cmd.Flags().GetInt("rate")
		channels, _ := cmd.Flags().GetInt("channels")
		scenario, _ := cmd.Flags().GetString("scenario")
		simulation, _ := cmd.Flags().GetBool("simulation")
		instructions, _ := cmd.Flags().GetString("instructions")
		voiceName, _ := cmd.Flags().GetString("voice")
		openingText, _ := cmd.Flags().GetString("text")
		outAudio, _ := cmd.Flags().GetString("out-audio")
		noSave, _ := cmd.Flags().GetBool("no-save")
		duration, _ := cmd.Flags().GetDuration("duration")
		requestPath, _ := cmd.Flags().GetString("request")

		if inputPath == "" {
			return fmt.Errorf("--input is required (a raw PCM file, or - for stdin)")
		}

		var turnDetection *realtime.TurnDetection
		if requestPath != "" {
			req, err := loadSessionRequest(requestPath)
			if err != nil {
				return err
			}
			if instructions == "" {
				instructions = req.Instructions
			}
			if voiceName == "" {
				voiceName = req.Voice
			}
			if scenario == "" {
				scenario = req.Scenario
			}
			if openingText == "" {
				openingText = req.Text
			}
			if !simulation {
				simulation = req.Simulation
			}
			turnDetection = req.TurnDetection.toConfig()
		}

		exchange, err := buildExchanger(cfgCtx)
		if err != nil {
			return err
		}

		stream, err := openInput(inputPath, pcm.Format{Rate: rate, Channels: channels})
		if err != nil {
			return err
		}

		sink := capture.Discard
		if outAudio != "" {
			f, err := os.Create(outAudio)
			if err != nil {
				return fmt.Errorf("opening output audio file: %w", err)
			}
			sink = capture.NewWriterSink(f)
		}

		if voiceName == "" {
			voiceName = cfgCtx.Voice
		}
		kind := realtime.KindAssistant
		if simulation {
			kind = realtime.KindSimulation
		}

		styles := cli.NewStyles(cli.DefaultTheme)
		failed := make(chan error, 1)

		sess, err := voice.NewSession(voice.Config{
			Credentials: realtime.NewBroker(cfgCtx.BrokerURL),
			Dialer: voice.NegotiatorDialer{N: realtime.NewNegotiator(realtime.NegotiatorConfig{
				ICEServers: cfgCtx.ICEServers,
				Exchange:   exchange,
			})},
			Context: realtime.SessionContext{
				ClientID:   cfgCtx.ClientID,
				ScenarioID: scenario,
				Kind:       kind,
			},
			Instructions:   instructions,
			Voice:          voiceName,
			TurnDetection:  turnDetection,
			ConnectTimeout: cfgCtx.ConnectTimeout.Duration(),
			OnEntry: func(e voice.Entry) {
				fmt.Println(styles.SpeakerLine(string(e.Speaker), e.Text))
			},
			OnState: func(st voice.State) {
				fmt.Println(styles.StateLine(st.String()))
			},
			OnRemoteError: func(re *realtime.Error) {
				cli.PrintWarning("remote error: %s", re.Message)
			},
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startedAt := time.Now()
		if err := sess.Start(ctx, stream, sink); err != nil {
			return err
		}
		go watchError(sess, failed)

		if openingText != "" {
			if err := sess.SendText(openingText); err != nil {
				cli.PrintWarning("sending opening text: %v", err)
			}
		}

		var timeout <-chan time.Time
		if duration > 0 {
			t := time.NewTimer(duration)
			defer t.Stop()
			timeout = t.C
		}

		select {
		case <-ctx.Done():
		case <-timeout:
		case err := <-failed:
			sess.Stop()
			return err
		}

		sess.Stop()
		stoppedAt := time.Now()

		entries := sess.Transcript().Entries()
		if !noSave {
			if err := saveSession(cmd.Context(), &archive.Record{
				ID:         sess.ID(),
				Kind:       kind,
				ScenarioID: scenario,
				StartedAt:  jsontime.Milli(startedAt),
				StoppedAt:  jsontime.Milli(stoppedAt),
				Entries:    entries,
			}); err != nil {
				return err
			}
		}

		if outAudio != "" {
			if fi, err := os.Stat(outAudio); err == nil {
				cli.PrintInfo("Wrote %s of remote audio to %s", cli.FormatBytes(fi.Size()), outAudio)
			}
		}
		cli.PrintSuccess("Session %s finished: %d entries in %s",
			sess.ID(), len(entries), cli.FormatDuration(stoppedAt.Sub(startedAt)))
		return nil
	},
}

// sessionRequest is the request-file shape accepted by run --request.
type sessionRequest struct {
	Instructions  string               `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Voice         string               `json:"voice,omitempty" yaml:"voice,omitempty"`
	Scenario      string               `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	Simulation    bool                 `json:"simulation,omitempty" yaml:"simulation,omitempty"`
	Text          string               `json:"text,omitempty" yaml:"text,omitempty"`
	TurnDetection *turnDetectionParams `json:"turn_detection,omitempty" yaml:"turn_detection,omitempty"`
}

type turnDetectionParams struct {
	Type              string  `json:"type,omitempty" yaml:"type,omitempty"`
	Threshold         float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty" yaml:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty" yaml:"silence_duration_ms,omitempty"`
}

func (td *turnDetectionParams) toConfig() *realtime.TurnDetection {
	if td == nil {
		return nil
	}
	return &realtime.TurnDetection{
		Type:              td.Type,
		Threshold:         td.Threshold,
		PrefixPaddingMs:   td.PrefixPaddingMs,
		SilenceDurationMs: td.SilenceDurationMs,
	}
}

// loadSessionRequest reads a session request file, or stdin for "-".
func loadSessionRequest(path string) (*sessionRequest, error) {
	var req sessionRequest
	if path == "-" {
		if err := cli.LoadRequestFromStdin(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if err := cli.LoadRequest(path, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// buildExchanger picks the offer exchange path the context configures:
// a signaling socket when one is set, otherwise a direct POST to the
// speech endpoint.
func buildExchanger(cfgCtx *cli.Context) (realtime.OfferExchanger, error) {
	if cfgCtx.SignalingURL != "" {
		return &realtime.SocketExchanger{URL: cfgCtx.SignalingURL}, nil
	}
	if cfgCtx.SpeechURL != "" {
		return &realtime.HTTPExchanger{URL: cfgCtx.SpeechURL}, nil
	}
	return nil, fmt.Errorf("context has neither speech-url nor signaling-url configured")
}

// openInput opens the PCM input and converts it to the 24 kHz mono
// format the remote endpoint consumes.
func openInput(path string, format pcm.Format) (*capture.Stream, error) {
	var src capture.Source
	if path == "-" {
		src = capture.NewReaderSource(os.Stdin, format)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		src = capture.NewReaderSource(f, format)
	}
	src, err := capture.Resample(src, pcm.L16Mono24K)
	if err != nil {
		src.Close()
		return nil, err
	}
	return capture.NewStream(src), nil
}

// watchError reports the session entering the error state. Polling is
// enough here; the state callback already prints the transition.
func watchError(sess *voice.Session, failed chan<- error) {
	for {
		switch sess.State() {
		case voice.StateError:
			failed <- sess.Err()
			return
		case voice.StateIdle:
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// saveSession archives one finished session record.
func saveSession(ctx context.Context, rec *archive.Record) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, rec); err != nil {
		return err
	}
	cli.PrintInfo("Archived session %s", rec.ID)
	return nil
}

func init() {
	runCmd.Flags().String("input", "", "raw PCM input file, or - for stdin (required)")
	runCmd.Flags().Int("rate", 24000, "input sample rate in Hz")
	runCmd.Flags().Int("channels", 1, "input channel count")
	runCmd.Flags().String("scenario", "", "scenario identifier for the credential request")
	runCmd.Flags().Bool("simulation", false, "run a structured simulation instead of a generic assistant session")
	runCmd.Flags().String("instructions", "", "override the credential's behavior directive")
	runCmd.Flags().String("voice", "", "remote voice (defaults to the context's voice)")
	runCmd.Flags().String("text", "", "text message to send once connected")
	runCmd.Flags().String("request", "", "YAML or JSON session request file, or - for stdin")
	runCmd.Flags().String("out-audio", "", "write remote PCM audio to this file")
	runCmd.Flags().Bool("no-save", false, "do not archive the session")
	runCmd.Flags().Duration("duration", 0, "stop the session after this long (0 = run until interrupted)")
}
