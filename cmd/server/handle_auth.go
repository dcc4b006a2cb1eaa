package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmswan/fivemhub/internal/authflow"
)

// The pending state only needs to survive the round trip to discord; the
// full session lasts a week.
const (
	loginSessionAge    = 300
	callbackSessionAge = 86400 * 7
)

func (s *Server) handleDiscordLogin(e echo.Context) error {
	if err := s.cfg.discordReady(); err != nil {
		return s.configError(e)
	}

	store, save, err := s.sessionStore(e)
	if err != nil {
		return err
	}

	state, err := store.NewState()
	if err != nil {
		return err
	}

	if err := save(loginSessionAge); err != nil {
		return err
	}

	return e.Redirect(http.StatusFound, s.oauthClient.AuthorizeURL(state))
}

func (s *Server) handleDiscordCallback(e echo.Context) error {
	if err := s.cfg.discordReady(); err != nil {
		return s.configError(e)
	}

	var req callbackRequest
	if err := e.Bind(&req); err != nil {
		return e.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	store, save, err := s.sessionStore(e)
	if err != nil {
		return err
	}

	result, err := s.flow.Handle(e.Request().Context(), store, req.Code, req.State)
	if err != nil {
		// persist the consumed state and cleared session before answering
		if serr := save(loginSessionAge); serr != nil {
			return serr
		}

		return s.abortResponse(e, err)
	}

	if err := save(callbackSessionAge); err != nil {
		return err
	}

	return e.JSON(http.StatusOK, callbackResponse{
		User:        toUserResponse(result.Identity),
		AccessToken: result.AccessToken,
	})
}

func (s *Server) handleLogout(e echo.Context) error {
	store, save, err := s.sessionStore(e)
	if err != nil {
		return err
	}

	store.Clear()

	if err := save(-1); err != nil {
		return err
	}

	return e.NoContent(http.StatusNoContent)
}

func (s *Server) handleMe(e echo.Context) error {
	store, _, err := s.sessionStore(e)
	if err != nil {
		return err
	}

	identity := store.Current()
	if identity == nil {
		return e.JSON(http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
	}

	resp := meResponse{User: toUserResponse(*identity)}

	profile, err := s.profiles.ByEmail(e.Request().Context(), identity.Email)
	if err == nil {
		resp.Profile = profile

		if err := s.profiles.TouchLastSeen(e.Request().Context(), identity.Email); err != nil {
			s.logger.Warn("could not update last seen", slog.String("err", err.Error()))
		}
	}

	return e.JSON(http.StatusOK, resp)
}

func (s *Server) abortResponse(e echo.Context, err error) error {
	var aerr *authflow.AbortError
	if !errors.As(err, &aerr) {
		s.logger.Error("callback failed", slog.String("err", err.Error()))
		return e.JSON(http.StatusInternalServerError, s.errorBody("login failed, please try again", err))
	}

	s.logger.Warn("login aborted",
		slog.String("reason", string(aerr.Reason)),
		slog.String("err", aerr.Error()),
	)

	return e.JSON(statusFor(aerr.Reason), s.errorBody(aerr.Message, aerr))
}

// statusFor mirrors the provider's status where it is meaningful.
func statusFor(reason authflow.AbortReason) int {
	switch reason {
	case authflow.ReasonMissingCode, authflow.ReasonStateMismatch:
		return http.StatusBadRequest
	case authflow.ReasonInvalidGrant:
		return http.StatusUnauthorized
	case authflow.ReasonDuplicateCallback:
		return http.StatusConflict
	case authflow.ReasonExchangeFailed,
		authflow.ReasonExchangeUnreachable,
		authflow.ReasonIdentityFetchFailed,
		authflow.ReasonMalformedIdentity:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody sanitizes the user-facing message; internal detail is attached
// only outside production.
func (s *Server) errorBody(message string, err error) errorResponse {
	body := errorResponse{Error: message}

	if !s.cfg.production() && err != nil {
		body.Debug = err.Error()
	}

	return body
}

func (s *Server) configError(e echo.Context) error {
	s.logger.Error("discord login requested but credentials are not configured")
	return e.JSON(http.StatusInternalServerError, errorResponse{Error: "discord login is not configured"})
}
