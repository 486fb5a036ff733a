package cli

// This file implements the commands that inspect and exercise a code
// catalog: listing codes, explaining one code, raising a code, and raising
// a group of codes.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"noexcept/pkg/catalog"
	"noexcept/pkg/noexcept"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

func validOutput(format string) bool {
	switch format {
	case outputTable, outputYAML, outputJSON:
		return true
	}
	return false
}

// CodesManager runs commands against a module loaded from the catalog.
type CodesManager struct {
	cfg     CLIConfig
	logger  *zap.Logger
	printer *Printer
	exit    func(int)

	module *noexcept.Module
}

// NewCodesManager creates a CodesManager with the given dependencies.
func NewCodesManager(cfg CLIConfig, printer *Printer, exit func(int), logger *zap.Logger) *CodesManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if printer == nil {
		printer = DefaultPrinter
	}
	if exit == nil {
		exit = os.Exit
	}
	return &CodesManager{cfg: cfg, logger: logger, printer: printer, exit: exit}
}

// DefaultCodesManager returns a CodesManager using the environment
// configuration.
func DefaultCodesManager(logger *zap.Logger) *CodesManager {
	return NewCodesManager(DefaultCLIConfig, DefaultPrinter, os.Exit, logger)
}

// NewCodesCmds builds the catalog commands.
func NewCodesCmds(logger *zap.Logger) []*cobra.Command {
	return DefaultCodesManager(logger).Commands()
}

// Commands returns the codes, explain, raise and group commands.
func (m *CodesManager) Commands() []*cobra.Command {
	return []*cobra.Command{
		m.newCodesCmd(),
		m.newExplainCmd(),
		m.newRaiseCmd(),
		m.newGroupCmd(),
	}
}

// Module returns the module the commands operate on, loading the catalog on
// first use.
func (m *CodesManager) Module() (*noexcept.Module, error) {
	if m.module != nil {
		return m.module, nil
	}
	module := noexcept.NewModule(
		noexcept.WithLogger(zapr.NewLogger(m.logger)),
		noexcept.WithOutput(m.printer.writer()),
		noexcept.WithExit(m.exit),
	)
	if m.cfg.CatalogPath != "" {
		stop := m.printer.SpinnerStart("Loading catalog " + m.cfg.CatalogPath)
		cat, err := catalog.Load(m.cfg.CatalogPath)
		if err != nil {
			stop(false, "Failed to load catalog")
			wrappedErr := wrapWithSentinel(ErrLoadCatalogFailed, err, fmt.Sprintf("failed to load catalog: %v", err))
			logStructuredError(m.logger, wrappedErr, "Failed to load catalog")
			return nil, wrappedErr
		}
		added := cat.Apply(module)
		stop(true, fmt.Sprintf("Loaded %d codes", added))
		m.logger.Debug("Catalog loaded", zap.String("path", m.cfg.CatalogPath), zap.Int("codes", added))
	}
	if m.cfg.Terminate {
		module.EnableTerminateOnRaise()
	}
	m.module = module
	return module, nil
}

func (m *CodesManager) newCodesCmd() *cobra.Command {
	output := m.cfg.Output
	if output == "" {
		output = defaultOutput
	}

	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List registered codes",
		Long:  "List every code in the catalog with its default message, soft flag and linked codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.ListCodes(cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", output, "Output format: table, yaml or json")

	return cmd
}

// ListCodes writes the registered codes in the given format.
func (m *CodesManager) ListCodes(w io.Writer, output string) error {
	module, err := m.Module()
	if err != nil {
		return err
	}
	output = strings.ToLower(output)
	if !validOutput(output) {
		err := newWithSentinel(ErrUnknownOutputFormat, fmt.Sprintf("unknown output format %q (use table|yaml|json)", output))
		Error("Unknown output format")
		logStructuredError(m.logger, err, "Unknown output format")
		return err
	}

	if output != outputTable {
		data, err := catalog.FromModule(module).Export(output)
		if err != nil {
			wrappedErr := wrapWithSentinel(ErrExportCatalogFailed, err, fmt.Sprintf("failed to export catalog: %v", err))
			logStructuredError(m.logger, wrappedErr, "Failed to export catalog")
			return wrappedErr
		}
		_, err = w.Write(data)
		return err
	}

	entries := module.Registry().Entries()
	if len(entries) == 0 {
		m.printer.Warn("No codes registered")
		return nil
	}
	rows := [][]string{{"Code", "Name", "Message", "Soft", "Linked"}}
	for _, entry := range entries {
		rows = append(rows, []string{
			strconv.Itoa(int(entry.Code)),
			entry.Name,
			entry.DefaultMessage,
			yesNo(entry.Soft),
			codesHeader(entry.Linked),
		})
	}
	printer := &Printer{Quiet: m.printer.Quiet, Writer: w}
	printer.Table(rows)
	return nil
}

func (m *CodesManager) newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <code>",
		Short: "Show how a code behaves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := m.parseCode(args[0])
			if err != nil {
				return err
			}
			return m.Explain(cmd.OutOrStdout(), code)
		},
	}
	return cmd
}

// Explain writes the registration of code, synthesized when unregistered.
func (m *CodesManager) Explain(w io.Writer, code noexcept.Code) error {
	module, err := m.Module()
	if err != nil {
		return err
	}
	reg := module.Lookup(code)
	registered := module.Registry().IsRegistered(code)

	printer := &Printer{Quiet: m.printer.Quiet, Writer: w}
	printer.TableBoxed([][]string{
		{"Field", "Value"},
		{"Code", strconv.Itoa(int(reg.Code))},
		{"Name", reg.Name},
		{"Message", reg.DefaultMessage},
		{"Soft", yesNo(reg.Soft)},
		{"Linked", codesHeader(reg.Linked)},
		{"Registered", yesNo(registered)},
	})
	if !registered {
		printer.Warn(fmt.Sprintf("Code %d is not in the catalog; calls raise it as a hard error", code))
	}
	return nil
}

func (m *CodesManager) newRaiseCmd() *cobra.Command {
	var soft bool
	var terminate bool
	var link string
	var then []string

	cmd := &cobra.Command{
		Use:   "raise <code> [message...]",
		Short: "Raise a code and show the resulting error",
		Long: `Raise a code the way a program would and print the result.

Soft codes are stashed; follow-up codes given with --then merge into the
pending error, which is raised at the end:
  noexcept raise 1001 "name is empty" --then 1001 --then 404`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := m.parseCode(args[0])
			if err != nil {
				return err
			}
			message := strings.Join(args[1:], " ")
			if err := validateMessage(message); err != nil {
				Error("Invalid message")
				logStructuredError(m.logger, err, "Invalid message")
				return err
			}
			followUps, err := m.parseCodes(then)
			if err != nil {
				return err
			}
			return m.Raise(cmd.Context(), cmd.OutOrStdout(), RaiseRequest{
				Code:      code,
				Message:   message,
				Soft:      soft,
				Terminate: terminate,
				Link:      link,
				Then:      followUps,
			})
		},
	}

	cmd.Flags().BoolVar(&soft, "soft", false, "Stash the error even if the code is hard")
	cmd.Flags().BoolVar(&terminate, "terminate", false, "Print the error and exit with status 1 instead of returning it")
	cmd.Flags().StringVar(&link, "link", "", "Link an external failure with this message")
	cmd.Flags().StringArrayVar(&then, "then", nil, "Call another code afterwards in the same scope (repeatable)")

	return cmd
}

// RaiseRequest describes one raise command.
type RaiseRequest struct {
	Code      noexcept.Code
	Message   string
	Soft      bool
	Terminate bool
	Link      string
	Then      []noexcept.Code
}

// Raise dispatches the request in a fresh scope, finishes with an empty call
// when anything is pending, and writes the outcome of every call.
func (m *CodesManager) Raise(ctx context.Context, w io.Writer, req RaiseRequest) error {
	module, err := m.Module()
	if err != nil {
		return err
	}
	if req.Terminate {
		module.EnableTerminateOnRaise()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = noexcept.Scoped(ctx)
	defer module.PendingStore().Release(noexcept.ScopeFrom(ctx))

	printer := &Printer{Quiet: m.printer.Quiet, Writer: w}

	first := []any{req.Code, noexcept.SoftenIf(req.Soft)}
	switch {
	case req.Link != "":
		first = append(first, errors.New(req.Link), noexcept.Complaint(req.Message))
	case req.Message != "":
		first = append(first, req.Message)
	}
	calls := [][]any{first}
	for _, code := range req.Then {
		calls = append(calls, []any{code})
	}

	for _, args := range calls {
		outcome, err := module.Dispatch(ctx, args...)
		printer.Step(fmt.Sprintf("%d: %s", args[0], outcome))
		if err != nil {
			return m.reportRaised(printer, err)
		}
	}

	if !module.HasPending(ctx) {
		return nil
	}
	printer.Info("Pending messages: " + strings.Join(module.ActiveMessages(ctx), "; "))
	return m.reportRaised(printer, module.Call(ctx))
}

func (m *CodesManager) newGroupCmd() *cobra.Command {
	var complaint string

	cmd := &cobra.Command{
		Use:   "group <code> [code...]",
		Short: "Raise several codes together",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := m.parseCodes(args)
			if err != nil {
				return err
			}
			return m.Group(cmd.Context(), cmd.OutOrStdout(), codes, complaint)
		},
	}

	cmd.Flags().StringVar(&complaint, "complaint", "", "Message added to every error in the group")

	return cmd
}

// Group raises codes as one group and writes a row per member.
func (m *CodesManager) Group(ctx context.Context, w io.Writer, codes []noexcept.Code, complaint string) error {
	module, err := m.Module()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err = module.Call(noexcept.Scoped(ctx), codes, noexcept.Complaint(complaint))

	var group *noexcept.Group
	if !errors.As(err, &group) {
		return m.reportRaised(&Printer{Quiet: m.printer.Quiet, Writer: w}, err)
	}
	rows := [][]string{{"#", "Code", "Message"}}
	for i, member := range group.Errors() {
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Itoa(int(member.Code())), noexcept.UserString(member)})
	}
	printer := &Printer{Quiet: m.printer.Quiet, Writer: w}
	printer.Table(rows)
	noexcept.LogError(zapr.NewLogger(m.logger), err, "Group raised")
	return err
}

// reportRaised prints a raised error and returns it.
func (m *CodesManager) reportRaised(printer *Printer, err error) error {
	if err == nil {
		return nil
	}
	var usage *noexcept.UsageError
	if errors.As(err, &usage) {
		printer.Error("Unsupported call")
		return err
	}
	printer.Error("Raised " + codesHeader(raisedCodes(err)))
	printer.Printf("%s\n", err.Error())
	logStructuredError(m.logger, err, "Raised")
	return err
}

func (m *CodesManager) parseCode(arg string) (noexcept.Code, error) {
	if strings.TrimSpace(arg) == "" {
		err := newWithSentinel(ErrCodeRequired, "code is required")
		logStructuredError(m.logger, err, "Code required")
		return 0, err
	}
	value, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		wrappedErr := wrapWithSentinel(ErrInvalidCode, err, fmt.Sprintf("invalid code %q: must be an integer", arg))
		Error("Invalid code")
		logStructuredError(m.logger, wrappedErr, "Invalid code")
		return 0, wrappedErr
	}
	return noexcept.Code(value), nil
}

func (m *CodesManager) parseCodes(args []string) ([]noexcept.Code, error) {
	codes := make([]noexcept.Code, 0, len(args))
	for _, arg := range args {
		code, err := m.parseCode(arg)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func raisedCodes(err error) []noexcept.Code {
	var group *noexcept.Group
	if errors.As(err, &group) {
		return group.Codes()
	}
	var coded *noexcept.Error
	if errors.As(err, &coded) {
		return coded.Codes()
	}
	return nil
}

func validateMessage(message string) error {
	for _, r := range message {
		if unicode.IsControl(r) {
			return newWithSentinel(ErrControlCharsNotAllowed, "message must not contain control characters")
		}
	}
	return nil
}

func codesHeader(codes []noexcept.Code) string {
	if len(codes) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, strconv.Itoa(int(code)))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
