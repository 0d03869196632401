package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/common"
)

func (a *App) Recipients(ctx context.Context) error {
	rs, err := a.recipients.List(ctx)
	if err != nil {
		return err
	}
	printRecipients(rs)
	return nil
}

func printRecipients(rs []models.Recipient) {
	if len(rs) == 0 {
		printlnFn("No recipients")
		return
	}
	for _, r := range rs {
		printlnFn(fmt.Sprintf("%4d  %-24s %s", r.RecipientID, r.Name, r.Contact()))
	}
}

// AddRecipient prompts for the recipient fields. Only the name is required;
// a recipient without any contact can be saved but not paid.
func (a *App) AddRecipient(ctx context.Context) error {
	var (
		r     models.Recipient
		image string
	)
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Name", &r.Name},
		{"Username (optional)", &r.Username},
		{"Email (optional)", &r.Email},
		{"CNIC (optional)", &r.CNIC},
		{"Image file or URL (optional)", &image},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	saved, err := a.recipients.Add(ctx, r, image)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Added recipient #%d %s", saved.RecipientID, saved.Name))
	if !saved.Actionable() {
		printlnFn("Note: no username, email or CNIC; payments to this recipient are disabled")
	}
	return nil
}

// DelRecipient deletes the recipients whose ids are given as arguments,
// prompting for them when there are none.
func (a *App) DelRecipient(ctx context.Context, args []string) error {
	if len(args) == 0 {
		line, err := getSimpleText(a.reader, "Recipient ids (space separated)", a.out)
		if err != nil {
			return err
		}
		args = strings.Fields(line)
	}

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	rs, err := a.recipients.Delete(ctx, ids...)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Deleted; %d recipients left", len(rs)))
	return nil
}

func parseIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no recipient ids given: %w", common.ErrInvalidArgument)
	}
	ids := make([]int, 0, len(args))
	for _, s := range args {
		id, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("bad recipient id %q: %w", s, common.ErrInvalidArgument)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *App) ClearRecipients(ctx context.Context) error {
	ok, err := Confirm(a.reader, "Remove all recipients?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.recipients.Clear(ctx); err != nil {
		return err
	}
	printlnFn("Recipients cleared")
	return nil
}

// ResetRecipients reloads the list from storage, or with --starter replaces
// it with the starter recipients.
func (a *App) ResetRecipients(ctx context.Context, args []string) error {
	reset := a.recipients.Reset
	if len(args) > 0 && args[0] == "--starter" {
		reset = a.recipients.Reseed
	}

	rs, err := reset(ctx)
	if err != nil {
		return err
	}
	printRecipients(rs)
	return nil
}
