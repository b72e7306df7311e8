package middleware

import (
    "bytes"
    "context"
    "encoding/json"
    "io"
    "log"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/purefire/storefront-api/internal/repository"
)

// AuditRecorder is the write side of the audit trail.  *repository.AuditRepo
// satisfies it; tests substitute a stub.
type AuditRecorder interface {
    Record(ctx context.Context, e repository.Entry) error
}

// maxAuditBody caps how much of a request body ends up in the changes
// payload.  CSV uploads can be large and the interesting part for the trail
// is that the upload happened, not every byte of it.
const maxAuditBody = 64 << 10

// AuditLog returns middleware that records an audit entry after the wrapped
// handler completes with a 2xx status.  The inbound body, path params and
// query string become the changes payload.  Recording is best-effort: a
// failure is logged operationally and never surfaces to the client.
func AuditLog(recorder AuditRecorder, action, entityType string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Buffer the body so both the handler and the audit capture can
            // read it.
            var bodyCopy []byte
            if c.Request().Body != nil {
                b, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAuditBody))
                if err == nil {
                    bodyCopy = b
                    c.Request().Body = io.NopCloser(bytes.NewReader(b))
                }
            }

            err := next(c)
            if err != nil {
                return err
            }
            status := c.Response().Status
            if status < 200 || status >= 300 {
                return nil
            }

            entry := repository.Entry{
                UserID:     AdminID(c),
                UserEmail:  AdminEmail(c),
                Action:     action,
                EntityType: entityType,
                EntityID:   auditEntityID(c, bodyCopy),
                Changes:    captureChanges(c, bodyCopy),
                IPAddress:  c.RealIP(),
                UserAgent:  c.Request().UserAgent(),
            }
            // Detach from the request context: the response has already been
            // written and a cancelled request must not drop the entry.
            ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
            defer cancel()
            if rerr := recorder.Record(ctx, entry); rerr != nil {
                log.Printf("audit: failed to record %s %s: %v", action, entityType, rerr)
            }
            return nil
        }
    }
}

// auditEntityID resolves the entity id from the path param, falling back to
// an "id" field in the request body, then "unknown".
func auditEntityID(c echo.Context, body []byte) string {
    if id := c.Param("id"); id != "" {
        return id
    }
    if len(body) > 0 {
        var probe struct {
            ID string `json:"id"`
        }
        if err := json.Unmarshal(body, &probe); err == nil && probe.ID != "" {
            return probe.ID
        }
    }
    return "unknown"
}

// captureChanges assembles the request-shaped changes payload.
func captureChanges(c echo.Context, body []byte) map[string]any {
    changes := map[string]any{}
    if len(body) > 0 {
        var parsed any
        if err := json.Unmarshal(body, &parsed); err == nil {
            changes["body"] = parsed
        } else {
            changes["body"] = string(body)
        }
    }
    params := map[string]string{}
    for _, name := range c.ParamNames() {
        params[name] = c.Param(name)
    }
    if len(params) > 0 {
        changes["params"] = params
    }
    if q := c.QueryParams(); len(q) > 0 {
        changes["query"] = q
    }
    return changes
}

// RecordManual writes an explicit before/after audit entry from a handler.
// Same best-effort contract as the declarative hook: errors are swallowed
// after an operational log line, and the parent request never fails because
// of them.
func RecordManual(c echo.Context, recorder AuditRecorder, action, entityType, entityID string, changes any) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    err := recorder.Record(ctx, repository.Entry{
        UserID:     AdminID(c),
        UserEmail:  AdminEmail(c),
        Action:     action,
        EntityType: entityType,
        EntityID:   entityID,
        Changes:    changes,
        IPAddress:  c.RealIP(),
        UserAgent:  c.Request().UserAgent(),
    })
    if err != nil {
        log.Printf("audit: failed to record %s %s/%s: %v", action, entityType, entityID, err)
    }
}
