package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/osse101/IdleCultivation_Go/internal/config"
	"github.com/osse101/IdleCultivation_Go/internal/event"
)

type DeadLettersCommand struct{}

func (c *DeadLettersCommand) Name() string {
	return "dead-letters"
}

func (c *DeadLettersCommand) Description() string {
	return "Summarize events that failed to publish (optional path)"
}

func (c *DeadLettersCommand) Run(args []string) error {
	path := getEnv("EVENT_DEADLETTER_PATH", config.DefaultDeadLetterPath)
	if len(args) > 0 {
		path = args[0]
	}

	PrintHeader("Dead letters: " + path)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		PrintSuccess("No dead-letter file, nothing failed")
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := event.ReadDeadLetters(f)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		PrintSuccess("Dead-letter file is empty")
		return nil
	}

	for _, line := range summarizeDeadLetters(entries) {
		fmt.Println("  " + line)
	}
	PrintWarning("%d events need replay", len(entries))
	return nil
}

// summarizeDeadLetters counts entries per event type, most frequent first
func summarizeDeadLetters(entries []event.DeadLetterEntry) []string {
	counts := make(map[event.Type]int)
	characters := make(map[event.Type]map[string]struct{})
	for _, e := range entries {
		counts[e.Event.Type]++
		if e.CharacterID == "" {
			continue
		}
		if characters[e.Event.Type] == nil {
			characters[e.Event.Type] = make(map[string]struct{})
		}
		characters[e.Event.Type][e.CharacterID] = struct{}{}
	}

	types := make([]event.Type, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})

	lines := make([]string, 0, len(types))
	for _, t := range types {
		lines = append(lines, fmt.Sprintf("%-24s %4d events, %d characters", t, counts[t], len(characters[t])))
	}
	return lines
}
