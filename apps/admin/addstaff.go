package main

import (
	"context"
	"fmt"

	"github.com/bdzone/staffboard/core/staff"
)

// addStaff creates a staff.Staff in its role partition.
func (cli *commandLine) addStaff(name, role, rank string) error {
	ns := staff.NewStaff{
		Name: name,
		Role: staff.Role(role),
		Rank: rank,
	}
	if err := ns.Validate(cli.validate); err != nil {
		return err
	}

	s, err := cli.staffSvc.Create(context.Background(), ns)
	if err != nil {
		return err
	}
	fmt.Printf("created %s %q (rank %s, id %s)\n", s.Role, s.Name, s.Rank, s.ID)
	return nil
}
