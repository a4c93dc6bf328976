package cli

import (
	"context"
	"fmt"
)

func (a *App) Login(ctx context.Context) {
	if a.isLoggedIn() {
		fmt.Println("Already signed in, use 'logout' first to switch accounts.")
		return
	}

	res := <-a.auth.Request(ctx)
	if res.Err != nil {
		fmt.Printf("Sign-in failed: %v\n", res.Err)
		return
	}

	sess := a.holder.Current()
	if sess == nil {
		// allow-list rejection is reported through res.Err above; this is
		// only reachable if the session vanished meanwhile
		fmt.Println("Sign-in did not produce a session.")
		return
	}
	fmt.Printf("Welcome, %s!\n", sess.User.Name)
}

func (a *App) Logout() {
	if !a.isLoggedIn() {
		fmt.Println("Not signed in.")
		return
	}
	a.holder.SignOut()
	fmt.Println("Signed out.")
}

func (a *App) WhoAmI() {
	sess := a.holder.Current()
	if sess == nil {
		fmt.Println("Not signed in.")
		return
	}
	fmt.Printf("%s <%s>\n", sess.User.Name, sess.User.Email)
}
