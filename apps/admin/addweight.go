package main

import (
	"context"
	"fmt"

	"github.com/bdzone/staffboard/core/ledger"
)

// addWeight registers or updates an action's point weight.
func (cli *commandLine) addWeight(action string, weight float64, desc string) error {
	uw := ledger.UpsertWeight{Action: action, Weight: weight, Description: desc}
	if err := uw.Validate(cli.validate); err != nil {
		return err
	}

	w, err := cli.ledgerSvc.UpsertWeight(context.Background(), uw)
	if err != nil {
		return err
	}
	fmt.Printf("action %q now weighs %.2f points (id %s)\n", w.Action, w.Weight, w.ID)
	return nil
}
