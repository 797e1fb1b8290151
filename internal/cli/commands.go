package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/fields"
	"github.com/yanryp/servicedesk-sub004/internal/form"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

func newLoginCommand(opts *globalOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.connect()
			if err != nil {
				return err
			}
			resp, err := p.api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newFormCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "form <template-id>",
		Short: "Show a template's fields with their pre-filled values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.connect()
			if err != nil {
				return err
			}
			session := p.session()
			if err := session.SelectTemplate(cmd.Context(), args[0]); err != nil {
				return err
			}
			printForm(cmd.OutOrStdout(), session.Snapshot())
			return nil
		},
	}
}

func newSubmitCommand(opts *globalOptions) *cobra.Command {
	var (
		draft         form.Draft
		priority      string
		rootCause     string
		issueCategory string
		sets          []string
		toggles       []string
	)

	cmd := &cobra.Command{
		Use:   "submit <template-id>",
		Short: "Fill in a template and submit it as a new ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.connect()
			if err != nil {
				return err
			}
			session := p.session()
			if err := session.SelectTemplate(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := applyEdits(session, sets, toggles, rootCause, issueCategory); err != nil {
				return err
			}

			draft.Priority = domain.TicketPriority(priority)
			id, err := session.Submit(cmd.Context(), draft)
			if err != nil {
				printFieldErrors(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Title, "title", "", "ticket title")
	cmd.Flags().StringVar(&draft.Description, "description", "", "ticket description")
	cmd.Flags().StringVar(&priority, "priority", string(domain.TicketPriorityMedium), "low, medium, high or urgent")
	cmd.Flags().StringVar(&rootCause, "root-cause", "", "override the suggested root cause")
	cmd.Flags().StringVar(&issueCategory, "issue-category", "", "override the suggested issue category")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&toggles, "toggle", nil, "checkbox option as name=option (repeatable)")
	return cmd
}

func newTicketCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ticket <ticket-id>",
		Short: "Show a ticket with its status and custom field values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.connect()
			if err != nil {
				return err
			}
			ticket, err := p.api.Ticket(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTicket(cmd.OutOrStdout(), ticket)
			return nil
		},
	}
}

func newApproveCommand(opts *globalOptions) *cobra.Command {
	var action, comment string

	cmd := &cobra.Command{
		Use:   "approve <ticket-id>",
		Short: "Record a manager decision on a pending ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.connect()
			if err != nil {
				return err
			}
			ticket, err := p.api.SubmitApproval(cmd.Context(), args[0], domain.ApprovalAction(action), comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ticket.ID, ticket.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", string(domain.ApprovalActionApprove), "approve or reject")
	cmd.Flags().StringVar(&comment, "comment", "", "decision comment, required to reject")
	return cmd
}

func (p *portal) session() *form.Session {
	return form.NewSession(form.Dependencies{
		Templates: p.api,
		Fields:    p.api,
		Options:   p.api,
		Profile:   p.api,
		Tickets:   p.api,
		Keywords:  p.cfg.Ticket.AutofillKeywords,
		Logger:    p.logger,
	})
}

func applyEdits(session *form.Session, sets, toggles []string, rootCause, issueCategory string) error {
	for _, kv := range sets {
		name, value, err := splitAssignment(kv)
		if err != nil {
			return err
		}
		if err := session.SetValue(name, value); err != nil {
			return err
		}
	}
	for _, kv := range toggles {
		name, option, err := splitAssignment(kv)
		if err != nil {
			return err
		}
		if err := session.ToggleOption(name, option); err != nil {
			return err
		}
	}
	if rootCause != "" {
		if err := session.SetRootCause(domain.RootCause(rootCause)); err != nil {
			return err
		}
	}
	if issueCategory != "" {
		if err := session.SetIssueCategory(domain.IssueCategory(issueCategory)); err != nil {
			return err
		}
	}
	return nil
}

func splitAssignment(kv string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", kv)
	}
	return strings.TrimSpace(name), value, nil
}

func printForm(w io.Writer, snap form.Snapshot) {
	if snap.Template != nil {
		fmt.Fprintf(w, "%s (%s / %s)\n", snap.Template.Name, snap.Template.CategoryName, snap.Template.ServiceName)
	}
	for _, def := range snap.Schema {
		marker := " "
		if def.Required {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-24s %-16s %s\n", marker, fields.DisplayLabel(def), def.Type, snap.Values[def.Name])
	}
	if !snap.Classification.Empty() {
		fmt.Fprintf(w, "suggested: root cause %s, issue category %s\n",
			snap.Classification.RootCause, snap.Classification.IssueCategory)
	}
}

func printTicket(w io.Writer, t *domain.Ticket) {
	fmt.Fprintf(w, "%s [%s] %s\n", t.ExternalKey, t.Status, t.Title)
	fmt.Fprintf(w, "priority: %s\n", t.Priority)
	if t.SLADueAt != nil {
		fmt.Fprintf(w, "due: %s\n", t.SLADueAt.Format(time.RFC3339))
	}
	if t.Approval != nil {
		fmt.Fprintf(w, "approval: %s by %s\n", t.Approval.Action, t.Approval.DecidedBy)
	}
	for _, v := range t.CustomFieldValues {
		fmt.Fprintf(w, "  %s: %s\n", v.FieldName, v.Value)
	}
}

func printFieldErrors(w io.Writer, err error) {
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || len(domainErr.Details) == 0 {
		return
	}
	names := make([]string, 0, len(domainErr.Details))
	for name := range domainErr.Details {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %v\n", name, domainErr.Details[name])
	}
}
