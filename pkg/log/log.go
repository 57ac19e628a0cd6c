// Copyright 2025 gameforge
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides operator-friendly console feedback for handoff runs,
// next to the structured zerolog output used for debugging.
package log

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Outcome describes where a file ended up after its handoff attempt.
type Outcome int

const (
	// Pushed means the file reached its canonical path and the commit was
	// pushed.
	Pushed Outcome = iota
	// ReturnedToInbox means the file is back (or still) at its inbox path.
	ReturnedToInbox
	// MovedToFailed means the file was routed to the failed directory.
	MovedToFailed
	// Lost means recovery itself failed; the file needs operator attention.
	Lost
)

// 📦 FileReport is one file's terminal result, for display.
type FileReport struct {
	Name      string  // original filename
	Outcome   Outcome
	FinalPath string // repo-relative target on success, otherwise the file's resting place
	Err       error  // nil on success
}

// 📢 UserLogger prints human-facing progress while mirroring everything into
// zerolog for debugging.
type UserLogger struct {
	log zerolog.Logger
}

// 🎯 NewUserLogger creates a user logger bound to the context's zerolog.
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 LogFileStart announces the file about to be processed.
func (u *UserLogger) LogFileStart(index, total int, name string) {
	msg := fmt.Sprintf("[%d/%d] %s", index, total, name)
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).Println(msg)
	u.log.Info().Int("index", index).Int("total", total).Str("file", name).Msg("processing file")
}

// 📝 LogFileReport prints a file's terminal outcome with its final location.
func (u *UserLogger) LogFileReport(report FileReport) {
	switch report.Outcome {
	case Pushed:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Printf("%s -> %s\n", report.Name, report.FinalPath)
		u.log.Info().Str("file", report.Name).Str("target", report.FinalPath).Msg("handoff complete")
	case ReturnedToInbox:
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "↩️"}).Printf("%s stayed in inbox\n", report.Name)
		pterm.Error.Println(report.Err)
		u.log.Error().Err(report.Err).Str("file", report.Name).Msg("handoff failed, file in inbox")
	case MovedToFailed:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "📁"}).Printf("%s moved to %s\n", report.Name, report.FinalPath)
		pterm.Error.Println(report.Err)
		u.log.Error().Err(report.Err).Str("file", report.Name).Str("failed_path", report.FinalPath).Msg("handoff failed, file in failed directory")
	case Lost:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Printf("%s could not be recovered\n", report.Name)
		pterm.Error.Println(report.Err)
		u.log.Error().Err(report.Err).Str("file", report.Name).Msg("recovery failed")
	}
}

// 📊 LogSummary prints the end-of-batch counts.
func (u *UserLogger) LogSummary(succeeded, failed int, failedDir string) {
	line := fmt.Sprintf("%s  %s",
		color.GreenString("succeeded: %d", succeeded),
		color.RedString("failed: %d", failed),
	)
	if failed == 0 {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "🎉"}).Println(line)
	} else {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(line)
		pterm.Warning.Printf("failed files are in %s\n", failedDir)
	}
	u.log.Info().Int("succeeded", succeeded).Int("failed", failed).Msg("batch finished")
}

// 🔍 LogValidation logs a check result (setup steps, token validation).
func (u *UserLogger) LogValidation(valid bool, description string) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
		return
	}
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
	u.log.Warn().Msg(description)
}

// ❌ LogFailure logs a terminal failure with its cause.
func (u *UserLogger) LogFailure(description string, err error) {
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
	pterm.Error.Println(err)
	u.log.Error().Err(err).Msg(description)
}

// 📣 LogStep logs a plain progress line.
func (u *UserLogger) LogStep(description string) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "▶️"}).Println(description)
	u.log.Info().Msg(description)
}
