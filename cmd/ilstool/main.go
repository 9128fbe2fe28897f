// Command ilstool exercises a configured ILS driver from the command line.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/indexdata/go-utils/utils"
	"github.com/spf13/cobra"

	"github.com/indexdata/ilsdriver/config"
	"github.com/indexdata/ilsdriver/ils"
	"github.com/indexdata/ilsdriver/slogwrap"
)

var (
	configPath  string
	institution string
	username    string
	password    string
)

var (
	okMark   = color.New(color.FgGreen).Sprint("ok")
	failMark = color.New(color.FgRed).Sprint("failed")
)

func driver() (ils.Driver, error) {
	f, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return f.Driver(institution, nil, nil, slogwrap.SlogWrap())
}

// login builds the driver and authenticates the patron from the global
// credential flags.
func login() (ils.Driver, *ils.Patron, error) {
	d, err := driver()
	if err != nil {
		return nil, nil, err
	}
	patron, err := d.PatronLogin(username, password)
	if err != nil {
		return nil, nil, err
	}
	if patron == nil {
		return nil, nil, fmt.Errorf("invalid credentials for %s", username)
	}
	return d, patron, nil
}

func result(label string, res *ils.Result) {
	mark := okMark
	if !res.Success {
		mark = failMark
	}
	fmt.Printf("%s: %s", label, mark)
	if res.Status != "" {
		fmt.Printf(" (%s)", res.Status)
	}
	if res.SysMessage != "" {
		fmt.Printf(" (%s)", res.SysMessage)
	}
	if res.WarningMessage != "" {
		fmt.Printf(" warning: %s", res.WarningMessage)
	}
	fmt.Println()
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Validate the patron credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, patron, err := login()
			if err != nil {
				return err
			}
			fmt.Printf("login: %s (%s %s, id %s)\n", okMark,
				patron.Firstname, patron.Lastname, patron.ID)
			return nil
		},
	}
}

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the patron profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, patron, err := login()
			if err != nil {
				return err
			}
			profile, err := d.GetMyProfile(patron)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s <%s> %s\n", profile.Firstname, profile.Lastname,
				profile.Email, profile.Phone)
			fmt.Printf("%s, %s %s\n", profile.Address1, profile.Zip, profile.City)
			if profile.ExpirationDate != "" {
				fmt.Printf("card expires %s\n", profile.ExpirationDate)
			}
			if profile.Blocked {
				fmt.Printf("account: %s\n", color.New(color.FgRed).Sprint("blocked"))
			}
			return nil
		},
	}
}

func holdingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holding <record-id>",
		Short: "Show item availability for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := driver()
			if err != nil {
				return err
			}
			holdings, err := d.GetHolding(args[0])
			if err != nil {
				return err
			}
			for _, h := range holdings {
				if h.Summary {
					fmt.Printf("summary: %d/%d available, %d locations\n",
						h.Available, h.Total, h.Locations)
					continue
				}
				mark := color.New(color.FgRed).Sprint(h.Status)
				if h.Availability {
					mark = color.New(color.FgGreen).Sprint(h.Status)
				}
				fmt.Printf("%-10s %-30s %-20s %s\n", h.ItemID, h.Location, h.CallNumber, mark)
			}
			return nil
		},
	}
}

func loansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loans",
		Short: "List current loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, patron, err := login()
			if err != nil {
				return err
			}
			loans, err := d.GetMyTransactions(patron)
			if err != nil {
				return err
			}
			for _, loan := range loans {
				due := loan.DueDate
				if loan.DueStatus == ils.DueStatusOverdue {
					due = color.New(color.FgRed).Sprint(due)
				}
				fmt.Printf("%-10s %-40s due %s\n", loan.CheckoutID, loan.Title, due)
			}
			return nil
		},
	}
}

func renewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "renew <checkout-id>...",
		Short: "Renew loans",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, patron, err := login()
			if err != nil {
				return err
			}
			res, err := d.RenewMyItems(patron, args)
			if err != nil {
				return err
			}
			for _, id := range args {
				item := res.Items[id]
				if item.Success {
					fmt.Printf("%s: %s, due %s\n", id, okMark, item.NewDate)
				} else {
					fmt.Printf("%s: %s (%s)\n", id, failMark, item.SysMessage)
				}
			}
			return nil
		},
	}
}

func holdsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holds",
		Short: "List holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, patron, err := login()
			if err != nil {
				return err
			}
			holds, err := d.GetMyHolds(patron)
			if err != nil {
				return err
			}
			for _, hold := range holds {
				state := "queued #" + hold.Position
				switch {
				case hold.Available:
					state = color.New(color.FgGreen).Sprint("on shelf")
				case hold.Frozen:
					state = "frozen"
					if hold.FrozenThrough != "" {
						state += " through " + hold.FrozenThrough
					}
				}
				fmt.Printf("%-10s %-40s %-25s %s\n",
					hold.RequestID, hold.Title, hold.Location, state)
			}
			return nil
		},
	}
}

func finesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fines",
		Short: "List fines and the payable total",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, patron, err := login()
			if err != nil {
				return err
			}
			fines, err := d.GetMyFines(patron)
			if err != nil {
				return err
			}
			for _, fine := range fines {
				payable := ""
				if fine.PayableOnline {
					payable = " payable"
				}
				fmt.Printf("%-10s %-35s %8.2f%s\n",
					fine.ID, fine.Description, float64(fine.Balance)/100, payable)
			}
			if d.SupportsMethod("GetOnlinePaymentDetails") {
				details, err := d.GetOnlinePaymentDetails(patron, fines)
				if err != nil {
					return err
				}
				if details.Payable {
					fmt.Printf("payable total: %.2f\n", float64(details.Amount)/100)
				} else {
					fmt.Printf("not payable: %s\n", details.Reason)
				}
			}
			return nil
		},
	}
}

func payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <amount-in-minor-units>",
		Short: "Register an online payment against the payable fines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			d, patron, err := login()
			if err != nil {
				return err
			}
			payment := ils.Payment{
				Amount:            amount,
				TransactionID:     uuid.NewString(),
				TransactionNumber: strconv.FormatInt(time.Now().Unix(), 10),
			}
			res, err := d.MarkFeesAsPaid(patron, payment, nil)
			if err != nil {
				return err
			}
			result("payment "+payment.TransactionID, res)
			return nil
		},
	}
}

func pickupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pickup-locations",
		Short: "List pickup locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, patron, err := login()
			if err != nil {
				return err
			}
			locations, err := d.GetPickUpLocations(patron, &ils.HoldRequest{Patron: patron})
			if err != nil {
				return err
			}
			def, err := d.GetDefaultPickUpLocation(patron)
			if err != nil {
				return err
			}
			for _, location := range locations {
				mark := ""
				if location.ID == def {
					mark = " (default)"
				}
				fmt.Printf("%-10s %s%s\n", location.ID, location.Display, mark)
			}
			return nil
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "ilstool",
		Short:         "Exercise ILS drivers against a configured institution",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config",
		utils.GetEnv("ILSTOOL_CONFIG", "institutions.yaml"), "institution config file")
	rootCmd.PersistentFlags().StringVarP(&institution, "institution", "i", "", "institution name")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "patron barcode")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "patron PIN")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(holdingCmd())
	rootCmd.AddCommand(loansCmd())
	rootCmd.AddCommand(renewCmd())
	rootCmd.AddCommand(holdsCmd())
	rootCmd.AddCommand(finesCmd())
	rootCmd.AddCommand(payCmd())
	rootCmd.AddCommand(pickupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
