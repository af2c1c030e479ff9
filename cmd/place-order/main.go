package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/commerce"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/discount"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/loyalty"
	"github.com/jafarshop/storefront/internal/pricing"
)

// Smoke-tests a deployment by driving one full checkout: add a variant,
// optionally apply a discount code and points, and submit the order.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/place-order/main.go <variant-id> <quantity> [discount-code] [points]")
		fmt.Println("Example: go run cmd/place-order/main.go VAR-8502 2 SAVE5 100")
		os.Exit(1)
	}

	variantID := os.Args[1]
	quantity, err := strconv.Atoi(os.Args[2])
	if err != nil || quantity < 1 {
		fmt.Fprintf(os.Stderr, "Invalid quantity: %s\n", os.Args[2])
		os.Exit(1)
	}

	var code string
	if len(os.Args) > 3 {
		code = os.Args[3]
	}
	points := 0
	if len(os.Args) > 4 {
		points, err = strconv.Atoi(os.Args[4])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid points: %s\n", os.Args[4])
			os.Exit(1)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	token := os.Getenv("SHOPPER_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "SHOPPER_TOKEN is required")
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := commerce.NewClient(cfg.Upstream, token, logger)
	store := cart.NewStore(client, cfg.Checkout.DebounceDelay, logger)
	defer store.Close()
	resolver := discount.NewResolver(client, logger)
	redeemer := loyalty.NewRedeemer(client, cfg.Checkout.PointValue, cfg.Checkout.DebounceDelay, logger)
	defer redeemer.Close()

	wizard := checkout.NewWizard(store, resolver, redeemer, client, cfg.Checkout.ShippingFee, false, logger)
	formatter := pricing.NewFormatter(cfg.Checkout.CurrencyLocale)
	ctx := context.Background()

	snapshot, err := store.AddItem(ctx, variantID, quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add item: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Cart: %d item(s), subtotal %s\n", snapshot.ItemCount, formatter.Format(snapshot.Subtotal))

	if code != "" {
		state, err := wizard.ApplyDiscount(ctx, code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply discount: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Discount %s: -%s\n", state.Code, formatter.Format(state.Amount))
	}

	if points > 0 {
		if _, err := redeemer.RefreshBalance(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch loyalty balance: %v\n", err)
			os.Exit(1)
		}
		redemption, err := wizard.ApplyPoints(ctx, points)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply points: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Points %d: -%s\n", redemption.AppliedPoints, formatter.Format(redemption.AppliedValue))
	}

	addresses, err := client.ListAddresses(ctx)
	if err != nil || len(addresses) == 0 {
		fmt.Fprintln(os.Stderr, "No saved address; add one before running this tool")
		os.Exit(1)
	}
	address := addresses[0]
	for _, a := range addresses {
		if a.IsDefault {
			address = a
			break
		}
	}

	wizard.SetShippingAddress(address)
	if err := wizard.Next(); err != nil {
		fmt.Fprintf(os.Stderr, "Shipping step rejected: %v\n", err)
		os.Exit(1)
	}
	if err := wizard.SetPaymentMethod(domain.PaymentMethodBankTransfer); err != nil {
		fmt.Fprintf(os.Stderr, "Payment method rejected: %v\n", err)
		os.Exit(1)
	}
	if err := wizard.Next(); err != nil {
		fmt.Fprintf(os.Stderr, "Payment step rejected: %v\n", err)
		os.Exit(1)
	}

	totals := wizard.Totals()
	fmt.Printf("Review total: %s (subtotal %s + shipping %s - discount %s - points %s)\n",
		formatter.Format(totals.Total),
		formatter.Format(totals.Subtotal),
		formatter.Format(totals.ShippingFee),
		formatter.Format(totals.DiscountAmount),
		formatter.Format(totals.LoyaltyValue),
	)

	order, err := wizard.Confirm(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Order submission failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nOrder placed!\n")
	fmt.Printf("Order number: %s\n", order.OrderNumber)
	fmt.Printf("Total: %s\n", formatter.Format(order.Total))
}
