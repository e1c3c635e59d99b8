package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"matchdata/internal/config"
	"matchdata/internal/ingest"
	"matchdata/internal/profile"
)

func newDiagnoseCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag string

	cmd := &cobra.Command{
		Use:   "diagnose [performance|peak]",
		Short: "Report which input workbooks each match folder provides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := profile.All()
			if len(args) == 1 {
				var err error
				if profiles, err = resolveProfiles(args[0]); err != nil {
					return err
				}
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := cfg.Paths.SourceDir
			if strings.TrimSpace(sourceFlag) != "" {
				if source, err = config.ExpandPath(strings.TrimSpace(sourceFlag)); err != nil {
					return fmt.Errorf("resolve --source: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, p := range profiles {
				diag, err := ingest.Diagnose(source, p)
				if err != nil {
					return err
				}
				printDiagnosis(out, p, diag, colorize)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Directory holding one folder per match (overrides paths.source_dir)")
	return cmd
}

func printDiagnosis(out io.Writer, p *profile.Profile, diag ingest.Diagnosis, colorize bool) {
	for _, line := range renderSectionHeader(fmt.Sprintf("%s inputs", p.Name), colorize) {
		fmt.Fprintln(out, line)
	}
	expected := len(p.Primary)
	for _, fd := range diag.Folders {
		fmt.Fprintln(out, renderStatusLine(fd.Name, diagnosisKind(fd.Status), describeFolder(fd, expected), colorize))
	}
	if len(diag.Folders) == 0 {
		fmt.Fprintln(out, "  no match folders found")
	}

	headers := []string{"Complete", "Only some", "None", "Folders"}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignRight}
	row := []string{
		strconv.Itoa(diag.Complete),
		strconv.Itoa(diag.Partial),
		strconv.Itoa(diag.Missing),
		strconv.Itoa(len(diag.Folders)),
	}
	fmt.Fprintln(out, renderTable(headers, [][]string{row}, aligns, nil))
}

func diagnosisKind(status ingest.FolderStatus) statusKind {
	switch status {
	case ingest.StatusComplete:
		return statusOK
	case ingest.StatusPartial:
		return statusWarn
	default:
		return statusMissing
	}
}

func describeFolder(fd ingest.FolderDiagnosis, expected int) string {
	if fd.Err != nil {
		return fd.Err.Error()
	}
	if len(fd.Inputs) == 0 {
		if len(fd.Workbooks) == 0 {
			return "no .xlsx files"
		}
		return "unrecognised: " + strings.Join(fd.Workbooks, ", ")
	}
	names := make([]string, len(fd.Inputs))
	for i, in := range fd.Inputs {
		names[i] = in.Name
	}
	msg := fmt.Sprintf("%d/%d %s", len(fd.Inputs), expected, strings.Join(names, ", "))
	if fd.Fallback {
		msg += " (fallback)"
	}
	return msg
}
