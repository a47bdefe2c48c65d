package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tripper "github.com/koscakluka/tripper/core"
	"github.com/koscakluka/tripper/core/audio"
	"github.com/koscakluka/tripper/core/audio/miniaudio"
	"github.com/koscakluka/tripper/core/audio/portaudio"
	"github.com/koscakluka/tripper/core/speechtotext"
	"github.com/spf13/cobra"
)

const transcribeLongDesc string = `Transcribe a recording, or record one from the microphone.

Examples:
  tripper transcribe question.wav --language Deutsch
  tripper transcribe --record 5s
  tripper transcribe --record 5s --backend portaudio --out question.wav`

type transcribeCommander struct {
	record   time.Duration
	backend  string
	language string
	out      string
}

func newTranscribeCmd(flags *rootFlags) *cobra.Command {
	cmder := &transcribeCommander{}

	cmd := &cobra.Command{
		Use:   "transcribe [file]",
		Short: "Turn speech into text",
		Long:  transcribeLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && cmder.record <= 0 {
				return errors.New("pass a file or --record")
			}

			a, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.Transcriber == nil {
				return fmt.Errorf("no transcription backend: %w", speechtotext.ErrUnavailable)
			}

			var recording []byte
			if len(args) == 1 {
				if recording, err = os.ReadFile(args[0]); err != nil {
					return fmt.Errorf("reading recording: %w", err)
				}
			} else if recording, err = cmder.recordWAV(cmd); err != nil {
				return err
			}

			tag := speechtotext.LanguageTag(tripper.LanguageCode(cmder.language))
			text, err := a.Transcriber.Transcribe(cmd.Context(), recording, tag)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), errorStyle.Render(speechtotext.UserMessage(err)))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().DurationVar(&cmder.record, "record", 0, "Record from the microphone for this long")
	cmd.Flags().StringVar(&cmder.backend, "backend", "miniaudio", "Audio backend used for recording (miniaudio, portaudio)")
	cmd.Flags().StringVarP(&cmder.language, "language", "l", tripper.DefaultLanguage, "Spoken language")
	cmd.Flags().StringVar(&cmder.out, "out", "", "Also save the recording to this WAV file")

	return cmd
}

func newRecorder(backend string) (audio.Recorder, error) {
	switch backend {
	case "miniaudio":
		client, err := miniaudio.NewClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "portaudio":
		client, err := portaudio.NewClient(0)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", backend)
}

func (c *transcribeCommander) recordWAV(cmd *cobra.Command) ([]byte, error) {
	rec, err := newRecorder(c.backend)
	if err != nil {
		return nil, err
	}
	defer rec.Close()

	fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf("Recording for %s...", c.record)))
	pcm, info, err := rec.Record(cmd.Context(), c.record)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}

	wav, err := audio.EncodeWAV(pcm, info)
	if err != nil {
		return nil, err
	}
	if c.out != "" {
		if err := os.WriteFile(c.out, wav, 0o644); err != nil {
			return nil, fmt.Errorf("saving recording: %w", err)
		}
	}
	return wav, nil
}
