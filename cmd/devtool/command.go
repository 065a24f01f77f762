package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/osse101/IdleCultivation_Go/internal/config"
)

const (
	defaultDBRetries     = 30
	defaultRetryInterval = 2 * time.Second
	defaultHealthTimeout = 5 * time.Second
)

// Command is one devtool subcommand
type Command interface {
	Name() string
	Description() string
	Run(args []string) error
}

type Registry struct {
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns the commands sorted by name
func (r *Registry) List() []Command {
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

func (r *Registry) PrintHelp() {
	r.writeHelp(os.Stdout)
}

func (r *Registry) writeHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage: devtool <command> [args...]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, cmd := range r.List() {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Name(), cmd.Description())
	}
	tw.Flush()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// dbURL prefers DB_URL, otherwise it builds the URL from DB_* the same
// way the server does
func dbURL() string {
	if url := os.Getenv("DB_URL"); url != "" {
		return url
	}
	cfg := config.Config{
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "idlecultivation"),
	}
	return cfg.GetDBConnString()
}
