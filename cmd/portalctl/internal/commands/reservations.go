package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/reservation"
	"github.com/appetiteclub/portal/pkg/enums/role"
)

var amounts = message.NewPrinter(language.English)

// Reservations lists the caller's reservations, or every reservation for
// staff and admins.
func Reservations(ctx context.Context, env *Env) error {
	if err := env.restore(ctx); err != nil {
		return err
	}

	var (
		list []models.Reservation
		err  error
	)
	if env.Session.User().HasRole(role.Roles.Staff, role.Roles.Admin) {
		list, err = env.Reservations.LoadAll(ctx)
	} else {
		list, err = env.Reservations.Load(ctx)
	}
	if err != nil {
		return err
	}

	printReservations(env.Out, list)
	return nil
}

func printReservations(out io.Writer, list []models.Reservation) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No reservations")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tTYPE\tSTATUS\tPAYMENT")
	for i := range list {
		r := &list[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Time, r.Type, r.DisplayStatus(), r.PaymentStatus)
	}
	w.Flush()
}

// Reserve submits a reservation. Delivery reservations are paid in the same
// run when -method is given, since the payment dialog does not outlive the
// process.
func Reserve(ctx context.Context, env *Env, args []string) error {
	var (
		form   reservation.Form
		method string
		card   models.CardDetails
	)

	fs := flag.NewFlagSet("reserve", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	fs.StringVar(&form.Date, "date", "", "date, YYYY-MM-DD")
	fs.StringVar(&form.Time, "time", "", "time, HH:MM")
	fs.StringVar(&form.Type, "type", "Dine-in", "Dine-in, Takeaway or Delivery")
	fs.StringVar(&form.RestaurantID, "restaurant", "", "restaurant id")
	fs.StringVar(&form.ServiceID, "service", "", "service id")
	fs.StringVar(&form.DeliveryAddress, "address", "", "delivery address")
	fs.StringVar(&form.ContactNumber, "contact", "", "contact number")
	fs.StringVar(&form.SpecialRequests, "requests", "", "special requests")
	fs.StringVar(&method, "method", "", "payment method for deliveries")
	fs.StringVar(&card.Holder, "card-holder", "", "card holder")
	fs.StringVar(&card.Number, "card-number", "", "card number")
	fs.StringVar(&card.Expiry, "card-expiry", "", "card expiry, MM/YY")
	fs.StringVar(&card.CVV, "card-cvv", "", "card cvv")
	if err := fs.Parse(args); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid flags", err)
	}

	if err := env.restore(ctx); err != nil {
		return err
	}

	created, err := env.Reservations.Submit(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Reservation %s is %s\n", created.ID, created.DisplayStatus())

	dialog := env.Reservations.Dialog()
	if dialog == nil {
		return nil
	}
	if method == "" {
		amounts.Fprintf(env.Out, "Payment %s of %.2f is pending\n", dialog.PaymentID, dialog.Amount)
		return nil
	}

	pay := reservation.PaymentForm{Method: method}
	if card.Number != "" {
		pay.Card = &card
	}
	paid, err := env.Reservations.Pay(ctx, pay)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Reservation %s is %s\n", paid.ID, paid.DisplayStatus())
	return nil
}

func Cancel(ctx context.Context, env *Env, args []string) error {
	if len(args) < 1 {
		return apperr.New(apperr.Validation, "usage: cancel <id>")
	}
	if err := env.restore(ctx); err != nil {
		return err
	}
	return env.Reservations.Cancel(ctx, args[0])
}
