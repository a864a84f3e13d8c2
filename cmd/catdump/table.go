package main

import (
	"os"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/addrkit/catalog-reader/catalog"
)

// locationTable renders the catalog's locations sorted by key. Rounded
// borders are used on a terminal, plain ASCII when output is redirected.
func locationTable(cat *catalog.Catalog) string {
	keys := make([]string, 0, len(cat.Locations))
	for key := range cat.Locations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tw := table.NewWriter()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"Key", "Provider", "Bundle", "Size", "Deps"})
	for _, key := range keys {
		loc := cat.Locations[key]
		tw.AppendRow(table.Row{
			loc.Key,
			providerShortName(loc.ProviderID),
			loc.BundleName,
			bundleSize(loc),
			strconv.Itoa(len(loc.Dependencies)),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: 48},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: 40},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func providerShortName(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '.' {
			return id[i+1:]
		}
	}
	return id
}

func bundleSize(loc *catalog.Location) string {
	if loc.BundleSize == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(loc.BundleSize), 10)
}
