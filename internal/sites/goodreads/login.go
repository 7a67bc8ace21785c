package goodreads

import (
	"fmt"
	"log/slog"

	"grshelves/internal/model"
)

// Login fills in and submits the sign-in form on the primary context. It does
// not check that the credentials were accepted.
func (c *Client) Login(signInURL string, cred model.Credential) error {
	page := c.sess.Primary()

	c.logger.Info("signing in", slog.String("url", signInURL))
	if err := page.Navigate(signInURL); err != nil {
		return fmt.Errorf("open sign-in page: %w", err)
	}

	email, err := page.Element(c.sel.Email, c.wait)
	if err != nil {
		return fmt.Errorf("find email field: %w", err)
	}
	if err := email.Input(cred.Email); err != nil {
		return fmt.Errorf("type email: %w", err)
	}

	password, err := page.Element(c.sel.Password, c.wait)
	if err != nil {
		return fmt.Errorf("find password field: %w", err)
	}
	if err := password.Input(cred.Password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}

	submit, err := page.Element(c.sel.SignIn, c.wait)
	if err != nil {
		return fmt.Errorf("find sign-in button: %w", err)
	}
	if err := submit.Click(); err != nil {
		return fmt.Errorf("submit sign-in form: %w", err)
	}
	return nil
}

// OpenFriends loads the friends listing on the primary context.
func (c *Client) OpenFriends(friendsURL string) error {
	c.logger.Info("opening friends list", slog.String("url", friendsURL))
	if err := c.sess.Primary().Navigate(friendsURL); err != nil {
		return fmt.Errorf("open friends page: %w", err)
	}
	return nil
}
