// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Johannes Frohnhofen

package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jfrohnhofen/electric-piano/pkg/flasher"
)

var (
	flashNoTUI   bool
	flashAndBoot bool
)

var flashCmd = &cobra.Command{
	Use:   "flash <image>",
	Short: "Program a firmware image",
	Long: `Write a firmware image to the device and verify every page.

The image may be a raw binary or an Intel HEX file (.hex/.ihx). Every
page is written, then read back as a checksum and compared against the
image, so a successful flash is always a verified flash.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlash,
}

func init() {
	flashCmd.Flags().BoolVar(&flashNoTUI, "no-tui", false, "Plain progress output instead of the TUI")
	flashCmd.Flags().BoolVar(&flashAndBoot, "boot", false, "Start the resident application after flashing")
	rootCmd.AddCommand(flashCmd)
}

func runFlash(cmd *cobra.Command, args []string) error {
	img, err := flasher.LoadImage(args[0])
	if err != nil {
		return err
	}
	if img.NumPages(pageSize) > numPages {
		return fmt.Errorf("image needs %d pages but the application region has only %d",
			img.NumPages(pageSize), numPages)
	}

	return withFlasher(func(ctx context.Context, f *flasher.Flasher) error {
		fmt.Printf("Image: %s (%d bytes, %d pages)\n", args[0], len(img.Data), img.NumPages(pageSize))

		var programErr error
		if flashNoTUI {
			programErr = programPlain(ctx, f, img)
		} else {
			programErr = programTUI(ctx, f, img)
		}
		if programErr != nil {
			return programErr
		}

		if flashAndBoot {
			if err := f.Quit(ctx); err != nil {
				return err
			}
			fmt.Println("Resident application started")
		}
		return nil
	})
}

// programPlain runs the programming flow with line-based progress output.
func programPlain(ctx context.Context, f *flasher.Flasher, img *flasher.Image) error {
	f.SetProgress(func(phase flasher.Phase, page, total int) {
		fmt.Printf("\r%-10s %d/%d pages", phase, page, total)
	})
	err := f.Program(ctx, img)
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Println("Flash complete")
	return nil
}

// programTUI runs the programming flow behind a Bubble Tea progress view.
func programTUI(ctx context.Context, f *flasher.Flasher, img *flasher.Image) error {
	prog := tea.NewProgram(newFlashModel())

	f.SetProgress(func(phase flasher.Phase, page, total int) {
		prog.Send(flashProgressMsg{phase: phase, page: page, total: total})
	})
	go func() {
		prog.Send(flashDoneMsg{err: f.Program(ctx, img)})
	}()

	final, err := prog.Run()
	if err != nil {
		return err
	}
	return final.(flashModel).err
}
