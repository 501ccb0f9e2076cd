package main

import (
	"context"
	"fmt"

	"github.com/bdzone/staffboard/core/apitoken"
)

// addToken mints an API token and prints the full secret. This is the only
// time the secret is visible; store it now.
func (cli *commandLine) addToken(name, source string) error {
	nt := apitoken.NewToken{Name: name, Source: source}
	if err := nt.Validate(cli.validate); err != nil {
		return err
	}

	t, err := cli.tokenSvc.Create(context.Background(), nt)
	if err != nil {
		return err
	}
	fmt.Printf("created token %q (id %s)\n", t.Name, t.ID)
	fmt.Printf("secret (shown once): %s\n", t.Secret)
	return nil
}
