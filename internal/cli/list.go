package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gamevault/internal/store"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

type listFlags struct {
	query    string
	genre    string
	platform string
	rating   string
	borrowed bool
	status   string
	tags     []string
	sort     string
	desc     bool
}

func newListCmd(a *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games matching a query and filters",
		Long: `List prints the games that match the text query and every given filter,
ordered by --sort. Tags are ANDed: a game must carry every --tag.

Example:
  gamevault list --platform ps5 --status completed
  gamevault list --tag rpg --tag co-op --sort rating --desc
  gamevault list --query zelda --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, key, err := lf.build(cmd)
			if err != nil {
				return err
			}
			return a.runList(cmd.Context(), cmd.OutOrStdout(), lf.query, filter, key)
		},
	}
	f := cmd.Flags()
	f.StringVar(&lf.query, "query", "", "case-insensitive text matched against name, genre and platform")
	f.StringVar(&lf.genre, "genre", "", "genre filter")
	f.StringVar(&lf.platform, "platform", "", "platform filter")
	f.StringVar(&lf.rating, "rating", "", "minimum rating")
	f.BoolVar(&lf.borrowed, "borrowed", false, "only borrowed games (--borrowed=false for games at home)")
	f.StringVar(&lf.status, "status", "", "status filter")
	f.StringSliceVar(&lf.tags, "tag", nil, "tag filter, repeatable")
	f.StringVar(&lf.sort, "sort", types.DefaultSort.Field, "sort field: "+strings.Join(types.SortFields, ", "))
	f.BoolVar(&lf.desc, "desc", false, "sort descending")
	return cmd
}

// build turns the flags into a filter and sort key. --borrowed is only
// active when given.
func (lf listFlags) build(cmd *cobra.Command) (types.Filter, types.SortKey, error) {
	filter := types.Filter{
		Genre:    strings.TrimSpace(lf.genre),
		Platform: strings.TrimSpace(lf.platform),
		Status:   strings.TrimSpace(lf.status),
	}
	if raw := strings.TrimSpace(lf.rating); raw != "" {
		n, err := parseRating(raw)
		if err != nil {
			return types.Filter{}, types.SortKey{}, err
		}
		filter.Rating = &n
	}
	if cmd.Flags().Changed("borrowed") {
		b := lf.borrowed
		filter.IsBorrowed = &b
	}
	for _, t := range lf.tags {
		filter.Tags = append(filter.Tags, types.SplitTags(t)...)
	}

	if !types.IsSortField(lf.sort) {
		return types.Filter{}, types.SortKey{}, fmt.Errorf("unknown sort field %q (valid: %s)", lf.sort, strings.Join(types.SortFields, ", "))
	}
	key := types.SortKey{Field: lf.sort, Desc: lf.desc}
	if !cmd.Flags().Changed("sort") && !cmd.Flags().Changed("desc") {
		key = types.DefaultSort
	}
	return filter, key, nil
}

// parseRating accepts a decimal comma as well as a point.
func parseRating(raw string) (float64, error) {
	n, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || n < 0 || n > 10 {
		return 0, fmt.Errorf("invalid rating %q: want a number from 0 to 10", raw)
	}
	return n, nil
}

func (a *app) runList(ctx context.Context, w io.Writer, query string, filter types.Filter, key types.SortKey) (err error) {
	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer a.detach(backend, &err)

	games, err := backend.Games()
	if err != nil {
		return systemError(err)
	}
	all, err := games.List(ctx)
	if err != nil {
		return systemError(fmt.Errorf("list games: %w", err))
	}
	visible := store.Apply(all, query, filter, key)

	if a.jsonMode {
		return writeJSON(w, visible)
	}
	return writeGameTable(w, visible)
}

func writeGameTable(w io.Writer, games []types.Game) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPLATFORM\tSTATUS\tRATING\tPURCHASED\tTAGS")
	for _, g := range games {
		rating := "-"
		if g.Rating != nil {
			rating = strconv.FormatFloat(*g.Rating, 'f', -1, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			g.Name, dash(g.Platform), dash(g.Status), rating, dash(g.PurchaseDate), dash(strings.Join(g.Tags, ", ")))
	}
	if err := tw.Flush(); err != nil {
		return systemError(fmt.Errorf("write output: %w", err))
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
