package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/cyp0633/icsitems/internal/config"
	"github.com/cyp0633/icsitems/internal/xcal"
	"github.com/cyp0633/icsitems/item"
	"github.com/cyp0633/icsitems/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "icsitems",
		Short: "Materialize calendar items from iCalendar files",
		Long: `icsitems reads iCalendar files, attaches recurrence exceptions to their
master items, synthesizes masters for orphaned exceptions and reports
timezones that cannot be resolved.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file in YAML")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newParseCmd(v))
	return root
}

func initConfig(v *viper.Viper) error {
	config.SetDefaults(v)

	cfgFile := v.GetString("config")
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func newParseCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an iCalendar file and print its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runParse(cmd, cfg, args[0])
		},
	}

	cmd.Flags().String("mode", "", "processing mode: sync or async")
	cmd.Flags().Int("workers", 0, "maximum goroutines in async mode, 0 for unbounded")
	cmd.Flags().StringP("format", "f", "", "output format: text or xml")
	_ = v.BindPFlag("parse.mode", cmd.Flags().Lookup("mode"))
	_ = v.BindPFlag("parse.workers", cmd.Flags().Lookup("workers"))
	_ = v.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	return cmd
}

func runParse(cmd *cobra.Command, cfg *config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	p := parser.New(parser.WithLogger(logger))

	var res *parser.Result
	switch cfg.Parse.Mode {
	case config.ModeAsync:
		pool := parser.NewPool(cfg.Parse.Workers)
		p.ParseAsync(f, pool, func(r *parser.Result, perr error) {
			res, err = r, perr
		})
		pool.Wait()
	default:
		res, err = p.Parse(f)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if cfg.Output.Format == config.FormatXML {
		return xcal.Write(out, res)
	}
	writeSummary(out, res)
	return nil
}

func writeSummary(w io.Writer, res *parser.Result) {
	for _, prop := range res.Properties() {
		fmt.Fprintf(w, "%s: %s\n", prop.Name, prop.Value)
	}

	for _, it := range res.Items() {
		fmt.Fprintln(w, describe(it))
		if info := it.RecurrenceInfo(); info != nil {
			for _, exc := range info.Exceptions() {
				fmt.Fprintln(w, "  "+describe(exc))
			}
		}
	}

	if extra := res.ExtraComponents(); len(extra) > 0 {
		names := make([]string, 0, len(extra))
		for _, comp := range extra {
			names = append(names, comp.Name)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "extra components: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "parentless: %d, timezone errors: %d\n",
		len(res.ParentlessItems()), res.TimezoneErrors())
}

func describe(it item.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", it.Kind(), it.ID())
	if title := it.Title(); title != "" {
		fmt.Fprintf(&b, " %q", title)
	}
	if rid, ok := it.RecurrenceID().Get(); ok {
		b.WriteString(" recurrence-id=" + rid.String())
	} else if start, ok := it.StartDate().Get(); ok {
		b.WriteString(" start=" + start.String())
	}
	if it.IsFakedMaster() {
		b.WriteString(" (faked)")
	}
	return b.String()
}
