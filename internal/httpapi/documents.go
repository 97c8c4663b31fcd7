package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"invoicedesk/backend/internal/documents"
	"invoicedesk/backend/internal/domain"
	"invoicedesk/backend/internal/render"
)

func (a *API) handleDocuments(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			filter, err := documents.ParseFilter(q.Get("filter"), q.Get("date"), q.Get("year"), q.Get("month"), a.documents.Location())
			if err != nil {
				a.writeDomainError(w, r, err)
				return
			}
			docs, err := a.documents.List(r.Context(), kind, filter)
			if err != nil {
				a.writeDomainError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
		case http.MethodPost:
			created, err := a.createDocument(r, kind)
			if err != nil {
				a.writeDomainError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, created)
		default:
			writeMethodNotAllowed(w)
		}
	}
}

// badRequest marks a body that could not be decoded.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }

func (a *API) createDocument(r *http.Request, kind string) (domain.CreatedResponse, error) {
	ctx := r.Context()
	switch kind {
	case domain.KindInvoice:
		var inv domain.Invoice
		if err := decodeJSON(r, &inv); err != nil {
			return domain.CreatedResponse{}, badRequest{err}
		}
		return a.documents.CreateInvoice(ctx, inv)
	case domain.KindQuotation:
		var quo domain.Quotation
		if err := decodeJSON(r, &quo); err != nil {
			return domain.CreatedResponse{}, badRequest{err}
		}
		return a.documents.CreateQuotation(ctx, quo)
	case domain.KindPurchase:
		var p domain.Purchase
		if err := decodeJSON(r, &p); err != nil {
			return domain.CreatedResponse{}, badRequest{err}
		}
		return a.documents.CreatePurchase(ctx, p)
	case domain.KindDeliveryNote:
		var note domain.DeliveryNote
		if err := decodeJSON(r, &note); err != nil {
			return domain.CreatedResponse{}, badRequest{err}
		}
		return a.documents.CreateDeliveryNote(ctx, note)
	case domain.KindMaintenanceReport:
		var report domain.MaintenanceReport
		if err := decodeJSON(r, &report); err != nil {
			return domain.CreatedResponse{}, badRequest{err}
		}
		return a.documents.CreateMaintenanceReport(ctx, report)
	}
	return domain.CreatedResponse{}, fmt.Errorf("%w: %s", documents.ErrUnknownKind, kind)
}

func (a *API) handleDocumentActions(kind string) http.HandlerFunc {
	prefix := apiPrefix + kind + "/"
	return func(w http.ResponseWriter, r *http.Request) {
		tail := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
		if tail == "" {
			writeError(w, http.StatusBadRequest, errors.New("document id required"))
			return
		}

		if id, ok := strings.CutSuffix(tail, "/print"); ok {
			if r.Method != http.MethodGet {
				writeMethodNotAllowed(w)
				return
			}
			a.printDocument(w, r, kind, strings.Trim(id, "/"))
			return
		}
		if strings.Contains(tail, "/") {
			writeError(w, http.StatusNotFound, errors.New("not found"))
			return
		}

		switch r.Method {
		case http.MethodGet:
			doc, err := a.documents.Get(r.Context(), kind, tail)
			if err != nil {
				a.writeDomainError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"document": doc})
		case http.MethodDelete:
			if err := a.documents.Delete(r.Context(), kind, tail); err != nil {
				a.writeDomainError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeMethodNotAllowed(w)
		}
	}
}

func (a *API) printDocument(w http.ResponseWriter, r *http.Request, kind, id string) {
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("document id required"))
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format != "" && format != "html" && format != "pdf" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}

	doc, err := a.documents.Get(r.Context(), kind, id)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	printable, err := render.FromDocument(doc, a.documents.Company(), a.documents.Location())
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	if format == "pdf" {
		body, err := render.PDF(printable)
		if err != nil {
			a.writeDomainError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", id+".pdf"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(render.HTML(printable)))
}
