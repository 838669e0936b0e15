package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/SynapticNetworks/compartsim/config"
	"github.com/SynapticNetworks/compartsim/node"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	spikeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func newRunCmd() *cobra.Command {
	var bundlePath, eventsPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a bundle and event script, tick it, and print a recordable trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			bf, err := os.Open(bundlePath)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			defer bf.Close()
			b, err := config.Load(bf)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			n, err := b.Build()
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}

			ef, err := os.Open(eventsPath)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			defer ef.Close()
			events, err := loadEvents(ef)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}

			return runEvents(cmd.OutOrStdout(), n, events)
		},
	}
	cmd.Flags().StringVarP(&bundlePath, "bundle", "b", "", "path to a JSON configuration bundle")
	cmd.Flags().StringVarP(&eventsPath, "events", "e", "", "path to a JSON event script")
	cmd.MarkFlagRequired("bundle")
	cmd.MarkFlagRequired("events")
	return cmd
}

func runEvents(w io.Writer, n *node.Node, events []Event) error {
	names := recordableNames(n)
	fmt.Fprintln(w, renderHeader(names))

	for _, ev := range events {
		switch ev.Type {
		case "spike":
			if err := n.DeliverSpike(ev.ReceptorID, ev.Lag, ev.Weight, multiplicityOrOne(ev.Multiplicity)); err != nil {
				return fmt.Errorf("run: spike event: %w", err)
			}
		case "current":
			if err := n.DeliverCurrent(ev.CompartmentID, ev.Lag, ev.Weight, ev.Current); err != nil {
				return fmt.Errorf("run: current event: %w", err)
			}
		case "tick":
			spikes, err := n.Tick(ev.Origin, ev.From, ev.To)
			if err != nil {
				return fmt.Errorf("run: tick event: %w", err)
			}
			fmt.Fprintln(w, renderRow(n, names))
			for _, s := range spikes {
				fmt.Fprintln(w, spikeStyle.Render(fmt.Sprintf("  spike at step %d", s.Step)))
			}
		default:
			return fmt.Errorf("run: unknown event type %q", ev.Type)
		}
	}
	return nil
}

func multiplicityOrOne(m int) int {
	if m == 0 {
		return 1
	}
	return m
}

func recordableNames(n *node.Node) []string {
	rec := n.Recordables()
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func renderHeader(names []string) string {
	cells := make([]string, len(names))
	for i, name := range names {
		cells[i] = headerStyle.Render(name)
	}
	return strings.Join(cells, "")
}

func renderRow(n *node.Node, names []string) string {
	rec := n.Recordables()
	cells := make([]string, len(names))
	for i, name := range names {
		cells[i] = cellStyle.Render(fmt.Sprintf("%.4f", *rec[name]))
	}
	return strings.Join(cells, "")
}
