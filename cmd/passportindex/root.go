package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK        = 0
	exitFailure   = 1
	exitConfig    = 2
	exitDB        = 3
	exitViolation = 4
	exitPartial   = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "passportindex",
		Short:         "Track Henley Passport Index rankings and visa requirement history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newScheduleCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newRankingsCmd())
	cmd.AddCommand(newRunsCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
