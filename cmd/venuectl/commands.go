package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nekogravitycat/venue-booking-backend/internal/catalog"
	"github.com/nekogravitycat/venue-booking-backend/internal/pricing"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "venuectl",
		Short:         "Venue booking utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(quoteCmd(), catalogCmd())
	return cmd
}

func quoteCmd() *cobra.Command {
	var (
		venuePrice int64
		guests     int
		items      []string
		venueID    string
		services   []string
		seedFile   string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a booking",
		Long: `Price a booking from raw amounts or from the seed catalog.

Examples:
  venuectl quote --venue-price 20000 --guests 50 --item per_person:500
  venuectl quote --venue v1 --guests 50 --service sp1 --service sp2
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if guests < 1 {
				return fmt.Errorf("--guests must be at least 1")
			}

			var (
				price     int64
				lineItems []pricing.LineItem
			)
			if venueID != "" {
				c, err := catalog.Load(seedFile)
				if err != nil {
					return err
				}
				price, lineItems, err = fromCatalog(c, venueID, services, guests)
				if err != nil {
					return err
				}
			} else {
				price = venuePrice
				for i, raw := range items {
					item, err := parseItem(raw, guests)
					if err != nil {
						return err
					}
					item.Label = fmt.Sprintf("item %d (%s)", i+1, raw)
					lineItems = append(lineItems, item)
				}
			}

			b := pricing.Calculate(price, lineItems)
			if outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(b)
			}
			printBreakdown(cmd.OutOrStdout(), b)
			return nil
		},
	}

	cmd.Flags().Int64Var(&venuePrice, "venue-price", 0, "Venue base price")
	cmd.Flags().IntVar(&guests, "guests", 1, "Guest count")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Line item as unit:amount (flat_rate, per_person, per_hour)")
	cmd.Flags().StringVar(&venueID, "venue", "", "Seed venue id; prices from the catalog")
	cmd.Flags().StringArrayVar(&services, "service", nil, "Seed package id (with --venue)")
	cmd.Flags().StringVar(&seedFile, "seed", "", "Seed catalog YAML (default: embedded)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output the breakdown as JSON")
	cmd.MarkFlagsMutuallyExclusive("venue", "venue-price")
	cmd.MarkFlagsMutuallyExclusive("venue", "item")

	return cmd
}

// parseItem reads "unit:amount". For per_person the amount is the price per guest.
func parseItem(raw string, guests int) (pricing.LineItem, error) {
	unitStr, amountStr, ok := strings.Cut(raw, ":")
	if !ok {
		return pricing.LineItem{}, fmt.Errorf("invalid item %q: want unit:amount", raw)
	}
	unit := pricing.Unit(unitStr)
	if !unit.Valid() {
		return pricing.LineItem{}, fmt.Errorf("invalid item %q: unknown unit %q", raw, unitStr)
	}
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount < 0 {
		return pricing.LineItem{}, fmt.Errorf("invalid item %q: amount must be a non-negative integer", raw)
	}
	return pricing.LineItem{Amount: pricing.ResolveLineItem(unit, amount, amount, guests)}, nil
}

func fromCatalog(c *catalog.Catalog, venueID string, services []string, guests int) (int64, []pricing.LineItem, error) {
	var price int64
	found := false
	for _, v := range c.Venues {
		if v.ID == venueID {
			price, found = v.BasePrice(), true
			break
		}
	}
	if !found {
		return 0, nil, fmt.Errorf("unknown venue %q", venueID)
	}

	items := make([]pricing.LineItem, 0, len(services))
	for _, id := range services {
		matched := false
		for _, p := range c.Packages {
			if p.ID != id {
				continue
			}
			if p.VenueID != venueID {
				return 0, nil, fmt.Errorf("package %q does not belong to venue %q", id, venueID)
			}
			items = append(items, p.LineItem(guests))
			matched = true
			break
		}
		if !matched {
			return 0, nil, fmt.Errorf("unknown package %q", id)
		}
	}
	return price, items, nil
}

func printBreakdown(w io.Writer, b pricing.Breakdown) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Venue\t%d\t\n", b.VenuePrice)
	for _, it := range b.Items {
		fmt.Fprintf(tw, "%s\t%d\t\n", it.Label, it.Amount)
	}
	fmt.Fprintf(tw, "Subtotal\t%d\t\n", b.Subtotal)
	fmt.Fprintf(tw, "Service fee (5%%)\t%d\t\n", b.ServiceFee)
	fmt.Fprintf(tw, "Total\t%d\t\n", b.Total)
	fmt.Fprintf(tw, "Deposit (30%%)\t%d\t\n", b.Deposit)
	fmt.Fprintf(tw, "Balance\t%d\t\n", b.Balance)
	tw.Flush()
}

func catalogCmd() *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the seed catalog",
	}
	cmd.PersistentFlags().StringVar(&seedFile, "seed", "", "Seed catalog YAML (default: embedded)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List seed venues and their packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(seedFile)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCITY\tCAPACITY\tPRICE\tPACKAGES")
			for _, v := range c.Venues {
				n := 0
				for _, p := range c.Packages {
					if p.VenueID == v.ID {
						n++
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d-%d\t%d-%d\t%d\n",
					v.ID, v.Name, v.Category, v.Location.City,
					v.Capacity.Min, v.Capacity.Max, v.PriceRange.Min, v.PriceRange.Max, n)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the seed catalog for invalid or inconsistent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(seedFile)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d venues, %d packages\n", len(c.Venues), len(c.Packages))
			return nil
		},
	})

	return cmd
}
