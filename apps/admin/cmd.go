package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/bdzone/staffboard/core"
	"github.com/bdzone/staffboard/core/apitoken"
	"github.com/bdzone/staffboard/core/ledger"
	"github.com/bdzone/staffboard/core/staff"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	db        *sqlx.DB
	validate  *validator.Validate
	staffSvc  *staff.Service
	tokenSvc  *apitoken.Service
	ledgerSvc *ledger.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate                                             - create the database if needed and apply pending migrations")
	fmt.Println("  addstaff -name NAME -role ROLE [-rank RANK]         - add a staff member (role: moderator|builder|manager|owner)")
	fmt.Println("  addtoken -name NAME -source SOURCE                  - mint an API token; the full secret is printed once")
	fmt.Println("  addweight -action ACTION -weight WEIGHT [-desc ...] - register or change an action's point weight")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStaffCmd := flag.NewFlagSet("addstaff", flag.ExitOnError)
	addStaffName := addStaffCmd.String("name", "", "The staff member's display name.")
	addStaffRole := addStaffCmd.String("role", "", "One of: moderator, builder, manager, owner.")
	addStaffRank := addStaffCmd.String("rank", "", "Optional rank; defaults to the role's trial tier.")

	addTokenCmd := flag.NewFlagSet("addtoken", flag.ExitOnError)
	addTokenName := addTokenCmd.String("name", "", "A label identifying the token holder.")
	addTokenSource := addTokenCmd.String("source", "", "The default event source recorded for this token's submissions.")

	addWeightCmd := flag.NewFlagSet("addweight", flag.ExitOnError)
	addWeightAction := addWeightCmd.String("action", "", "The action name, e.g. ticket_closed.")
	addWeightWeight := addWeightCmd.Float64("weight", 0, "Points applied per event; may be negative or zero.")
	addWeightDesc := addWeightCmd.String("desc", "", "Optional description.")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "addstaff":
		if err := addStaffCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStaffName == "" || *addStaffRole == "" {
			addStaffCmd.Usage()
			return errHelp
		}
		return cli.addStaff(*addStaffName, *addStaffRole, *addStaffRank)
	case "addtoken":
		if err := addTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTokenName == "" || *addTokenSource == "" {
			addTokenCmd.Usage()
			return errHelp
		}
		return cli.addToken(*addTokenName, *addTokenSource)
	case "addweight":
		if err := addWeightCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addWeightAction == "" {
			addWeightCmd.Usage()
			return errHelp
		}
		return cli.addWeight(*addWeightAction, *addWeightWeight, *addWeightDesc)
	default:
		cli.printUsage()
		return errHelp
	}
}
