package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/broady/patman/config"
)

type ListCmd struct {
	Config string `help:"Path to the services and endpoints file." short:"c" required:"" type:"existingfile"`
}

func (c *ListCmd) Run(g *Globals) error {
	f, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	services, err := f.BuildServices()
	if err != nil {
		return err
	}
	endpoints, err := f.BuildEndpoints()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICES")
	for _, name := range sorted(services) {
		fmt.Fprintf(w, "  %s\t%s\n", name, services[name].BaseURL)
	}
	fmt.Fprintln(w, "ENDPOINTS")
	for _, name := range sorted(endpoints) {
		m := endpoints[name].Metadata()
		line := fmt.Sprintf("  %s\t%s\t%s", name, m.Method, m.Path)
		if len(m.Computed) > 0 {
			line += "\t(computed: " + strings.Join(m.Computed, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

func sorted[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
