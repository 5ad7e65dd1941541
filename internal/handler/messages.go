package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/aumanu2/chatdrop/internal/apperr"
	"github.com/aumanu2/chatdrop/internal/model"
	"github.com/aumanu2/chatdrop/internal/store"
	"github.com/aumanu2/chatdrop/internal/uploads"
)

const (
	collectionMessages = "message"
	defaultListLimit   = 50

	// Form values stay in memory up to this size, larger parts spill to
	// temp files.
	maxUploadMemory = 32 << 20
)

var validate = validator.New()

// Stored text reaches browsers verbatim; strip all markup on the way in.
var sanitize = bluemonday.StrictPolicy()

type listResponse struct {
	Items []model.MessageOut `json:"items"`
}

type submitResponse struct {
	ID string `json:"id"`
	OK bool   `json:"ok"`
}

type submitForm struct {
	Username string `validate:"required"`
}

// ServeMessages lists recent messages, oldest first within the page.
func ServeMessages(log *slog.Logger, db store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			respondError(w, r, log, apperr.Storage(errors.New("handler: store not configured")))
			return
		}

		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			respondError(w, r, log, err)
			return
		}

		// Newest N selected at the query, re-sorted ascending below.
		docs, err := db.GetDocuments(r.Context(), collectionMessages, bson.M{}, limit,
			bson.D{{Key: "created_at", Value: -1}})
		if err != nil {
			respondError(w, r, log, err)
			return
		}

		items := lo.Map(docs, func(doc bson.M, _ int) model.MessageOut {
			return model.Normalize(doc)
		})
		sort.SliceStable(items, func(i, j int) bool {
			return createdAtKey(items[i]) < createdAtKey(items[j])
		})

		respondJSON(w, http.StatusOK, listResponse{Items: items})
	}
}

func parseLimit(raw string) (int64, error) {
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validationf("limit must be an integer")
	}
	if limit < 1 {
		return 0, apperr.Validationf("limit must be a positive integer")
	}
	return limit, nil
}

// Timestamps normalize to a fixed-width layout, so string order is time
// order. Messages without one sort first.
func createdAtKey(m model.MessageOut) string {
	if m.CreatedAt == nil {
		return ""
	}
	return *m.CreatedAt
}

// SubmitMessage accepts a new message as form data: required username,
// optional text, optional file part.
func SubmitMessage(log *slog.Logger, db store.Store, dir *uploads.Dir) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			respondError(w, r, log, apperr.Storage(errors.New("handler: store not configured")))
			return
		}

		isMultipart := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
		if isMultipart {
			if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
				respondError(w, r, log, apperr.Validationf("malformed multipart form"))
				return
			}
		} else if err := r.ParseForm(); err != nil {
			respondError(w, r, log, apperr.Validationf("malformed form data"))
			return
		}

		form := submitForm{Username: r.PostFormValue("username")}
		if err := validate.Struct(form); err != nil {
			respondError(w, r, log, apperr.Validationf("username is required"))
			return
		}

		var text *string
		if vals, ok := r.PostForm["text"]; ok && len(vals) > 0 {
			clean := sanitize.Sanitize(vals[0])
			text = &clean
		}

		var fileURL, contentType *string
		if isMultipart {
			file, header, err := r.FormFile("file")
			switch {
			case err == nil:
				defer file.Close()

				name, saveErr := dir.Save(header.Filename, file)
				if saveErr != nil {
					respondError(w, r, log, saveErr)
					return
				}

				url := "/uploads/" + name
				fileURL = &url
				if declared := header.Header.Get("Content-Type"); declared != "" {
					contentType = &declared
				}

				// The declared type is stored verbatim; the sniffed one is
				// logged so mismatches are visible in debug output.
				if detected, detErr := dir.DetectMIME(name); detErr == nil {
					log.DebugContext(r.Context(), "upload stored",
						"name", name,
						"declared_type", header.Header.Get("Content-Type"),
						"detected_type", detected)
				}
			case errors.Is(err, http.ErrMissingFile):
				// no file part, text-only message
			default:
				respondError(w, r, log, apperr.Validationf("malformed file part"))
				return
			}
		}

		if text == nil && fileURL == nil {
			log.DebugContext(r.Context(), "message has neither text nor file",
				"username", form.Username)
		}

		msg := model.Message{
			Username:    form.Username,
			Text:        text,
			FileURL:     fileURL,
			ContentType: contentType,
			CreatedAt:   time.Now().UTC(),
		}

		id, err := db.CreateDocument(r.Context(), collectionMessages, msg)
		if err != nil {
			respondError(w, r, log, err)
			return
		}

		respondJSON(w, http.StatusOK, submitResponse{ID: id, OK: true})
	}
}
