package cli

import (
	"context"
	"log"
	"os"

	"github.com/sterilpoint/protokol/internal/tooldict"
)

// Login asks for credentials, authenticates against the server and loads the
// tool name dictionary used to canonicalize free-text tool input.
func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.api.Login(ctx, userName, string(password)); err != nil {
		log.Printf("Login unsuccessful: %v", err)
		return err
	}

	names, err := a.api.ListToolNames(ctx)
	if err != nil {
		log.Printf("error loading tool dictionary: %v", err)
		return err
	}
	a.dict = tooldict.New(names)
	a.userName = userName

	log.Printf("Login successful")
	return nil
}
