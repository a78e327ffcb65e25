package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/internal/utils"
	"github.com/jrsteele09/go-order-portal/orders"
	"github.com/jrsteele09/go-order-portal/payments"
	"github.com/spf13/cobra"
)

func ordersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List, show and place orders",
	}

	var statuses []string
	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.visit(cmd.Context(), "/orders")
			if err != nil {
				return err
			}
			params := orders.ListParams{PageRequest: api.PageRequest{Size: size}}
			if cmd.Flags().Changed("page") {
				params.Page = utils.Ptr(page)
			}
			for _, s := range statuses {
				params.Statuses = append(params.Statuses, orders.Status(strings.ToUpper(s)))
			}
			result, err := p.Orders.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSER\tSTATUS\tITEMS\tTOTAL")
			for _, o := range result.Content {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2f\n", o.ID, o.UserEmail, o.Status, len(o.OrderItems), o.TotalPrice)
			}
			return w.Flush()
		},
	}
	list.Flags().StringSliceVar(&statuses, "status", nil, "only orders in these statuses")
	list.Flags().IntVar(&page, "page", 0, "page number")
	list.Flags().IntVar(&size, "size", 0, "page size")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			p, err := a.visit(cmd.Context(), "/orders/"+args[0])
			if err != nil {
				return err
			}
			o, err := p.Orders.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Order %d for %s: %s, total %.2f\n", o.ID, o.UserEmail, o.Status, o.TotalPrice)
			for _, it := range o.OrderItems {
				fmt.Printf("  %d x %s @ %.2f\n", it.Quantity, it.ItemName, it.ItemPrice)
			}
			return nil
		},
	}

	var items []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Place an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseItems(items)
			if err != nil {
				return err
			}
			p, err := a.visit(cmd.Context(), "/orders")
			if err != nil {
				return err
			}
			o, err := p.Orders.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("Placed order %d, total %.2f\n", o.ID, o.TotalPrice)
			return nil
		},
	}
	create.Flags().StringSliceVar(&items, "item", nil, "ITEM_ID:QUANTITY, repeatable")

	cmd.AddCommand(list, get, create)
	return cmd
}

func parseItems(items []string) (orders.CreateRequest, error) {
	var req orders.CreateRequest
	if len(items) == 0 {
		return req, fmt.Errorf("at least one --item is required")
	}
	for _, it := range items {
		idText, qtyText, found := strings.Cut(it, ":")
		if !found {
			qtyText = "1"
		}
		id, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid item %q", it)
		}
		qty, err := strconv.Atoi(qtyText)
		if err != nil || qty <= 0 {
			return req, fmt.Errorf("invalid quantity in %q", it)
		}
		req.OrderItems = append(req.OrderItems, orders.ItemRequest{ItemID: id, Quantity: qty})
	}
	return req, nil
}

func paymentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Search and make payments",
	}

	var orderID, userID int64
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "Search payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.visit(cmd.Context(), "/payments")
			if err != nil {
				return err
			}
			params := payments.SearchParams{Status: payments.Status(strings.ToUpper(status))}
			if cmd.Flags().Changed("order") {
				params.OrderID = utils.Ptr(orderID)
			}
			if cmd.Flags().Changed("user") {
				params.UserID = utils.Ptr(userID)
			}
			found, err := p.Payments.Search(cmd.Context(), params)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tORDER\tUSER\tSTATUS\tAMOUNT\tTIME")
			for _, pm := range found {
				fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%.2f\t%s\n", pm.ID, pm.OrderID, pm.UserID, pm.Status, pm.PaymentAmount, pm.Timestamp)
			}
			return w.Flush()
		},
	}
	list.Flags().Int64Var(&orderID, "order", 0, "only payments for this order")
	list.Flags().Int64Var(&userID, "user", 0, "only payments by this user")
	list.Flags().StringVar(&status, "status", "", "PENDING, COMPLETED or FAILED")

	var payOrder int64
	var amount float64
	pay := &cobra.Command{
		Use:   "create",
		Short: "Pay for an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.visit(cmd.Context(), "/payments")
			if err != nil {
				return err
			}
			pm, err := p.Payments.Create(cmd.Context(), payments.CreateRequest{OrderID: payOrder, PaymentAmount: amount})
			if err != nil {
				return err
			}
			fmt.Printf("Payment %d for order %d: %s\n", pm.ID, pm.OrderID, pm.Status)
			return nil
		},
	}
	pay.Flags().Int64Var(&payOrder, "order", 0, "order to pay")
	pay.Flags().Float64Var(&amount, "amount", 0, "amount to pay")

	cmd.AddCommand(list, pay)
	return cmd
}

func usersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users (admins only)",
	}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.visit(cmd.Context(), "/users")
			if err != nil {
				return err
			}
			req := api.PageRequest{Size: size}
			if cmd.Flags().Changed("page") {
				req.Page = utils.Ptr(page)
			}
			result, err := p.Users.List(cmd.Context(), req)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tBIRTH DATE\tACTIVE")
			for _, u := range result.Content {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.FullName(), u.Email, u.BirthDate, u.Active)
			}
			return w.Flush()
		},
	}
	list.Flags().IntVar(&page, "page", 0, "page number")
	list.Flags().IntVar(&size, "size", 0, "page size")

	cmd.AddCommand(list)
	return cmd
}
