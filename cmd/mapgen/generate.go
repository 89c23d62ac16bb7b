package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/npc-world/pkg/world"
)

const spawnMarker = '@'

var (
	width           int
	height          int
	wallProbability float64
	seed            uint64
	format          string
	output          string
	noColor         bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a map",
	Long: `Generate a map with walls on every border cell and random interior walls.
Spawn points are always floor and are marked with '@' in ASCII output.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	defaults := world.DefaultConfig()
	generateCmd.Flags().IntVar(&width, "width", defaults.Width, "Map width in cells")
	generateCmd.Flags().IntVar(&height, "height", defaults.Height, "Map height in cells")
	generateCmd.Flags().Float64Var(&wallProbability, "wall-probability", defaults.WallProbability, "Chance an interior cell is a wall (0-1)")
	generateCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	generateCmd.Flags().StringVar(&format, "format", "ascii", "Output format: ascii or json")
	generateCmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	generateCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored ASCII output")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	format = strings.ToLower(format)
	if format != "ascii" && format != "json" {
		return fmt.Errorf("unknown format %q, expected ascii or json", format)
	}

	cfg := world.DefaultConfig()
	cfg.Width = width
	cfg.Height = height
	cfg.WallProbability = wallProbability

	if seed == 0 {
		seed = rand.Uint64()
	}
	m, err := world.Generate(cfg, rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		return fmt.Errorf("failed to generate map: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	color := !noColor
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to close %s: %v\n", output, err)
			}
		}()
		w = f
		color = false
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m.State())
	}

	_, err = fmt.Fprint(w, renderASCII(m, seed, color))
	return err
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	wallStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	floorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	spawnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0")).Bold(true)
)

// renderASCII draws the map with a header line. Spawn points are drawn as
// spawnMarker.
func renderASCII(m *world.Map, seed uint64, color bool) string {
	markers := make(map[world.Position]rune)
	for _, p := range m.SpawnPoints() {
		if m.IsWalkable(p) {
			markers[p] = spawnMarker
		}
	}

	title := cases.Title(language.English).String(fmt.Sprintf("map %dx%d seed %d", m.Width(), m.Height(), seed))
	grid := m.Render(markers)
	if !color {
		return title + "\n" + grid
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')
	for _, line := range strings.SplitAfter(grid, "\n") {
		for _, r := range strings.TrimSuffix(line, "\n") {
			switch r {
			case spawnMarker:
				b.WriteString(spawnStyle.Render(string(r)))
			case '#':
				b.WriteString(wallStyle.Render(string(r)))
			default:
				b.WriteString(floorStyle.Render(string(r)))
			}
		}
		if strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
