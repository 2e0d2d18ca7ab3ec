package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lavelada/velada-votes/services"
)

// apiResponse is the envelope every JSON endpoint returns.
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, response apiResponse) {
	js, err := json.Marshal(response)
	if err != nil {
		slog.Error("failed to marshal JSON response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		slog.Error("failed to write JSON response", slog.Any("error", err))
	}
}

func successResponse(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, apiResponse{Success: true, Data: data})
}

func errorResponse(w http.ResponseWriter, status int, errorKind, message string) {
	writeJSON(w, status, apiResponse{Success: false, Error: errorKind, Message: message})
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, "Bad request", err.Error())
}

func notFoundResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusNotFound, "Not found", message)
}

func conflictResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusConflict, "Conflict", message)
}

func unauthorizedResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusUnauthorized, "Unauthorized", message)
}

func forbiddenResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusForbidden, "Forbidden", message)
}

// serverErrorResponse logs the real error and hides it from the caller.
func serverErrorResponse(w http.ResponseWriter, err error) {
	slog.Error("internal server error", slog.Any("error", err))
	errorResponse(w, http.StatusInternalServerError, "Internal server error",
		"the server encountered a problem and could not process your request")
}

func getCombatIDFromURL(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "combatID")
	combatID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid combat ID %q", raw)
	}
	return combatID, nil
}

// mapServiceErrorToHTTP translates service-layer errors into HTTP responses.
// Validation and conflict cases keep their specific kind; anything else is a
// generic 500 with the detail logged, not leaked.
func mapServiceErrorToHTTP(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCombatNotFound),
		errors.Is(err, services.ErrUserNotFound):
		notFoundResponse(w, err.Error())

	case errors.Is(err, services.ErrAlreadyVoted),
		errors.Is(err, services.ErrEmailConflict):
		conflictResponse(w, err.Error())

	case errors.Is(err, services.ErrInvalidParticipant),
		errors.Is(err, services.ErrParticipantNotInCombat),
		errors.Is(err, services.ErrNotConfirmed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrUnsupportedImage):
		badRequestResponse(w, err)

	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, err.Error())

	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, err.Error())

	case errors.Is(err, services.ErrUploaderUnavailable):
		errorResponse(w, http.StatusServiceUnavailable, "Service unavailable", err.Error())

	default:
		serverErrorResponse(w, err)
	}
}
