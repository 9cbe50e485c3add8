package steps

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alexisbeaulieu97/shopflow/internal/assert"
	"github.com/alexisbeaulieu97/shopflow/internal/client"
	"github.com/alexisbeaulieu97/shopflow/internal/model"
)

// AuthPublicKey fetches the PEM key the auth service signs tokens with.
func AuthPublicKey(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	resp, err := env.get(ctx, endpoint(s.Services.Auth, "/api/v1/auth/public-key"), nil)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	if pem, ok := resp.Body.Text(); ok {
		s.PublicKeyPEM = pem
	}
	return model.Okf("status %d", resp.Status)
}

// AuthLoginAdmin logs the admin account in.
func AuthLoginAdmin(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	account := s.Credentials.Admin
	resp, err := env.login(ctx, account.Email, account.Password)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}

	token, err := assert.StringField(resp.Body, "accessToken")
	if err != nil {
		return failure(err)
	}
	userID, err := assert.StringField(resp.Body, "userId")
	if err != nil {
		return failure(err)
	}
	s.AdminToken = token
	s.AdminUserID = userID
	return model.Okf("userId %s", userID)
}

// AuthLoginOrRegisterCustomer logs the customer in, registering the account
// when it does not exist yet.
func AuthLoginOrRegisterCustomer(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	account := s.Credentials.Customer

	resp, err := env.login(ctx, account.Email, account.Password)
	if err != nil {
		return failure(err)
	}
	switch resp.Status {
	case http.StatusOK:
		if err := env.storeCustomerSession(resp.Body); err != nil {
			return failure(err)
		}
		return model.Okf("login ok userId %s", s.CustomerUserID)
	case http.StatusUnauthorized, http.StatusNotFound:
	default:
		return model.Failf("login failed with status %d", resp.Status)
	}

	resp, err = env.send(ctx, http.MethodPost, endpoint(s.Services.Auth, "/api/v1/auth/register"), nil,
		credentials{Email: account.Email, Password: account.Password, Name: CustomerName})
	if err != nil {
		return failure(err)
	}
	switch resp.Status {
	case http.StatusCreated:
		if err := env.storeCustomerSession(resp.Body); err != nil {
			return failure(err)
		}
		return model.Okf("registered userId %s", s.CustomerUserID)
	case http.StatusConflict:
	default:
		return model.Failf("register failed with status %d", resp.Status)
	}

	resp, err = env.login(ctx, account.Email, account.Password)
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	if err := env.storeCustomerSession(resp.Body); err != nil {
		return failure(err)
	}
	return model.Okf("login after conflict userId %s", s.CustomerUserID)
}

func (e *Env) login(ctx context.Context, email, password string) (*client.Response, error) {
	return e.send(ctx, http.MethodPost, endpoint(e.State.Services.Auth, "/api/v1/auth/login"), nil,
		credentials{Email: email, Password: password})
}

// storeCustomerSession copies the token triple into state only when all
// three fields are present.
func (e *Env) storeCustomerSession(body client.Body) error {
	token, err := assert.StringField(body, "accessToken")
	if err != nil {
		return err
	}
	refresh, err := assert.StringField(body, "refreshToken")
	if err != nil {
		return err
	}
	userID, err := assert.StringField(body, "userId")
	if err != nil {
		return err
	}
	e.State.CustomerToken = token
	e.State.CustomerRefresh = refresh
	e.State.CustomerUserID = userID
	return nil
}

// AuthRefresh exchanges the refresh token. The new access token is checked
// but not stored.
func AuthRefresh(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CustomerRefresh == "" {
		return model.Skip("missing refresh token")
	}

	resp, err := env.send(ctx, http.MethodPost, endpoint(s.Services.Auth, "/api/v1/auth/refresh"), nil,
		map[string]string{"refreshToken": s.CustomerRefresh})
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	token, err := assert.StringField(resp.Body, "accessToken")
	if err != nil {
		return failure(err)
	}
	return model.Okf("token length %d", len(token))
}

// AuthValidate asks the auth service whether the customer token is valid.
func AuthValidate(ctx context.Context, env *Env) model.Outcome {
	s := env.State
	if s.CustomerToken == "" {
		return model.Skip("missing access token")
	}

	resp, err := env.send(ctx, http.MethodPost, endpoint(s.Services.Auth, "/api/v1/auth/validate"), nil,
		map[string]string{"token": s.CustomerToken})
	if err != nil {
		return failure(err)
	}
	if err := assert.ExpectStatus(resp.Status, []int{http.StatusOK}, resp.Body); err != nil {
		return failure(err)
	}
	valid, err := assert.StringField(resp.Body, "valid")
	if err != nil {
		return failure(err)
	}
	return model.Okf("valid %s", valid)
}

// AuthTokenSignature verifies the customer token locally against the
// published key and checks that it was issued to the customer.
func AuthTokenSignature(_ context.Context, env *Env) model.Outcome {
	s := env.State
	if s.PublicKeyPEM == "" {
		return model.Skip("missing public key")
	}
	if s.CustomerToken == "" || s.CustomerUserID == "" {
		return model.Skip("missing customer session")
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(s.PublicKeyPEM))
	if err != nil {
		return model.Failf("invalid public key: %v", err)
	}

	token, err := jwt.Parse(s.CustomerToken, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return model.Failf("token rejected: %v", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return model.Failf("token rejected: %v", err)
	}
	if subject != s.CustomerUserID {
		return model.Failf("token subject %q does not match user %q", subject, s.CustomerUserID)
	}
	return model.Okf("RS256 signature valid for %s", subject)
}
