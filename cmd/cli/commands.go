package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/bankledger/internal/adapter/http/dto"
)

var bcryptGenerate = bcrypt.GenerateFromPassword

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session and print its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var session dto.SessionResponse
			err := newClient().do(cmd.Context(), http.MethodPost, "/api/v1/sessions",
				dto.OpenSessionRequest{Username: username, Password: password}, &session)
			if err != nil {
				return err
			}
			fmt.Println(session.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User operations",
	}

	var username, password string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var user dto.UserResponse
			err := newClient().do(cmd.Context(), http.MethodPost, "/api/v1/users",
				dto.CreateUserRequest{Username: username, Password: password}, &user)
			if err != nil {
				return err
			}
			printJSON(user)
			return nil
		},
	}
	createCmd.Flags().StringVar(&username, "username", "", "Username")
	createCmd.Flags().StringVar(&password, "password", "", "Password")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("password")

	cmd.AddCommand(createCmd)
	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var req dto.RegisterAccountRequest
	var opening string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a bank account",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(opening)
			if err != nil {
				return err
			}
			req.OpeningBalance = amount

			var account dto.AccountResponse
			if err := newClient().do(cmd.Context(), http.MethodPost, "/api/v1/accounts", req, &account); err != nil {
				return err
			}
			printJSON(account)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&req.UserID, "user", "", "Owning user id")
	registerCmd.Flags().StringVar(&req.CardNumber, "card", "", "16 digit card number")
	registerCmd.Flags().StringVar(&req.IBAN, "iban", "", "IBAN")
	registerCmd.Flags().StringVar(&opening, "opening-balance", "0", "Opening balance")
	_ = registerCmd.MarkFlagRequired("user")
	_ = registerCmd.MarkFlagRequired("card")
	_ = registerCmd.MarkFlagRequired("iban")

	getCmd := &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			if err := newClient().do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, &account); err != nil {
				return err
			}
			printJSON(account)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List the accounts of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListAccountsResponse
			if err := newClient().do(cmd.Context(), http.MethodGet, "/api/v1/users/"+url.PathEscape(args[0])+"/accounts", nil, &resp); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCARD\tIBAN\tBALANCE")
			for _, a := range resp.Accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.CardNumber, a.IBAN, a.Balance)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(registerCmd, getCmd, listCmd)
	return cmd
}

func transferCmd() *cobra.Command {
	var req dto.CreateTransferRequest
	var amount, idempotencyKey string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer money between accounts",
		Long: `Transfer money between accounts. --from and --to accept an account id,
a 16 digit card number or an IBAN. --channel is one of card-to-card,
interbank-same-day or interbank-batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseAmount(amount)
			if err != nil {
				return err
			}
			req.Amount = parsed

			var result dto.TransferResponse
			err = newClient().do(cmd.Context(), http.MethodPost, "/api/v1/transfers", req, &result,
				"Idempotency-Key", idempotencyKey)
			if err != nil {
				return err
			}

			fmt.Printf("Tracking code: %s\n", result.TrackingCode)
			fmt.Printf("New balance:   %s\n", result.NewSenderBalance)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.From, "from", "", "Sender reference")
	cmd.Flags().StringVar(&req.To, "to", "", "Receiver reference")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount, at most two fraction digits")
	cmd.Flags().StringVar(&req.Channel, "channel", "card-to-card", "Transfer channel")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func historyCmd() *cobra.Command {
	var limit int
	var cursor string

	cmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "List the most recent transactions of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			if cursor != "" {
				query.Set("cursor", cursor)
			}

			var page dto.HistoryResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/transactions?" + query.Encode()
			if err := newClient().do(cmd.Context(), http.MethodGet, path, nil, &page); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tCHANNEL\tFROM\tTO\tAMOUNT\tTIME")
			for _, t := range page.Transactions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.TrackingCode, t.Channel,
					truncate(t.SenderAccountID, 12), truncate(t.ReceiverAccountID, 12),
					t.Amount, t.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if page.NextCursor != "" {
				fmt.Printf("\nMore: --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of transactions")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Continue after a previous page")

	return cmd
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <tracking-code>",
		Short: "Find a transaction by tracking code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tx dto.TransactionResponse
			if err := newClient().do(cmd.Context(), http.MethodGet, "/api/v1/transactions/"+url.PathEscape(args[0]), nil, &tx); err != nil {
				return err
			}
			printJSON(tx)
			return nil
		},
	}
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.ConsistencyResponse
			if err := newClient().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, &result); err != nil {
				return fmt.Errorf("consistency check FAILED: %w", err)
			}

			fmt.Printf("Consistency check PASSED\n")
			fmt.Printf("Consistent: %v\n", result.Consistent)
			fmt.Printf("Status: %s\n", result.Status)
			return nil
		},
	}

	var accountID string
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile one account, or every account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			if accountID != "" {
				var result dto.ReconciliationResponse
				if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/accounts/"+url.PathEscape(accountID)+"/reconciliation", nil, &result); err != nil {
					return err
				}
				printJSON(result)
				return nil
			}

			var report dto.ReconciliationReportResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconciliation", nil, &report); err != nil {
				return err
			}
			fmt.Printf("Accounts: %d, reconciled: %d, ledger consistent: %v\n",
				report.TotalAccounts, report.ReconciledAccounts, report.LedgerConsistent)
			for _, d := range report.Discrepancies {
				fmt.Printf("  %s recorded=%s calculated=%s difference=%s\n",
					d.AccountID, d.RecordedBalance, d.CalculatedBalance, d.Difference)
			}
			return nil
		},
	}
	reconcileCmd.Flags().StringVar(&accountID, "account", "", "Reconcile only this account")

	cmd.AddCommand(consistencyCmd, reconcileCmd)
	return cmd
}

// hashPasswordCmd prints a bcrypt hash for seeding users directly in the database.
func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hashed))
			return nil
		},
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format output: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
