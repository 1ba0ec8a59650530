package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"chatimmo/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message...>",
	Short: "Answer one chat message and print the reply",
	Example: `  chatimmo ask 2 bedrooms in Lac2 price under 1500
  chatimmo ask "je cherche 3 chambres à Tunis"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	chat, err := buildChatService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	reply, err := chat.Respond(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("respond: %w", err)
	}

	out := cmd.OutOrStdout()
	color.New(color.FgCyan, color.Bold).Fprintln(out, "Bot:")
	fmt.Fprintln(out, strings.TrimRight(reply.Text, "\n"))

	if len(reply.Listings) > 0 {
		fmt.Fprintln(out)
		return printListings(out, reply.Listings)
	}
	return nil
}

// printListings renders the result table with the columns of the chat page
func printListings(w io.Writer, listings []model.Listing) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tPRICE (TND)\tBEDROOMS\tSURFACE (m²)\tLOCATION")
	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			l.Title,
			strconv.FormatFloat(l.Price, 'f', -1, 64),
			l.Bedrooms,
			strconv.FormatFloat(l.Surface, 'f', -1, 64),
			l.Location,
		)
	}
	return tw.Flush()
}
