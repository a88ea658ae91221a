// Command flowcheck runs the authorization code flow against a live server
// and reports whether each step behaved.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-enquiry-service/flowclient"
	"github.com/jrsteele09/go-enquiry-service/users"
)

func main() {
	var (
		baseURL      = flag.String("base-url", "http://localhost:8080", "Server base URL")
		clientID     = flag.String("client-id", "", "OAuth client id")
		clientSecret = flag.String("client-secret", "", "Client secret, for confidential clients")
		redirectURI  = flag.String("redirect-uri", "http://localhost:8080/callback", "Registered redirect URI")
		username     = flag.String("username", "flowcheck", "Username to log in as")
		password     = flag.String("password", "", "Password for the user")
		email        = flag.String("email", "flowcheck@example.com", "Email used when registering")
		country      = flag.String("country", "GB", "Country used when registering")
		register     = flag.Bool("register", false, "Register the user first; an existing user is not an error")
		timeout      = flag.Duration("timeout", 30*time.Second, "Overall deadline")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *clientID == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client, err := flowclient.New(*baseURL, *clientID, *clientSecret, *redirectURI)
	if err != nil {
		log.Fatal().Err(err).Msg("client setup")
	}

	if *register {
		err := client.Register(ctx, users.Registration{
			Username: *username,
			Email:    *email,
			Password: *password,
			Name:     *username,
			Country:  *country,
		})
		var statusErr *flowclient.StatusError
		switch {
		case err == nil:
			log.Info().Str("username", *username).Msg("registered")
		case errors.As(err, &statusErr) && statusErr.Status == http.StatusConflict:
			log.Info().Str("username", *username).Msg("already registered")
		default:
			log.Fatal().Err(err).Msg("register")
		}
	}

	if err := client.Login(ctx, *username, *password); err != nil {
		log.Fatal().Err(err).Msg("login")
	}
	log.Info().Msg("login ok")

	state := ulid.Make().String()
	code, err := client.Authorize(ctx, state)
	if err != nil {
		log.Fatal().Err(err).Msg("authorize")
	}
	log.Info().Str("state", state).Msg("authorization code issued")

	tok, err := client.Exchange(ctx, code)
	if err != nil {
		log.Fatal().Err(err).Msg("exchange")
	}
	log.Info().Time("expiry", tok.Expiry).Str("token_type", tok.TokenType).Msg("access token issued")

	// The same code must not work twice.
	_, err = client.Exchange(ctx, code)
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) || retrieveErr.ErrorCode != "invalid_grant" {
		log.Fatal().Err(err).Msg("replayed code was not rejected with invalid_grant")
	}
	log.Info().Msg("replay rejected")

	info, err := client.UserInfo(ctx, tok)
	if err != nil {
		log.Fatal().Err(err).Msg("userinfo")
	}
	log.Info().
		Str("sub", info.Sub).
		Str("email", info.Email).
		Str("name", info.Name).
		Msg("userinfo ok")

	log.Info().Msg("flow check passed")
}
