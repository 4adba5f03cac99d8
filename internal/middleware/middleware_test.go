package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/jrwishart93/james-square-booking/internal/booking"
    "github.com/jrwishart93/james-square-booking/internal/config"
    "github.com/jrwishart93/james-square-booking/internal/utils"
)

const secret = "test-secret"

func bearer(t *testing.T, handle, role string) string {
    t.Helper()
    tok, err := utils.NewAccessToken(secret, handle, role, time.Hour)
    if err != nil {
        t.Fatalf("sign token: %v", err)
    }
    return "Bearer " + tok.Token
}

func whoami(c echo.Context) error {
    id := IdentityFrom(c)
    return c.JSON(http.StatusOK, echo.Map{"handle": id.Handle, "role": string(id.Role)})
}

func TestJWTAuth(t *testing.T) {
    e := echo.New()
    e.Use(JWTAuth(secret))
    e.GET("/me", whoami)
    e.GET("/private", whoami, RequireRole())
    e.GET("/committee", whoami, RequireRole(booking.RoleCommittee))

    cases := []struct {
        name, path, auth string
        want             int
    }{
        {"guest public", "/me", "", http.StatusOK},
        {"guest private", "/private", "", http.StatusUnauthorized},
        {"bad scheme", "/me", "Token abc", http.StatusUnauthorized},
        {"bad token", "/me", "Bearer abc.def.ghi", http.StatusUnauthorized},
        {"resident private", "/private", bearer(t, "alice@example.com", "resident"), http.StatusOK},
        {"resident committee", "/committee", bearer(t, "alice@example.com", "resident"), http.StatusForbidden},
        {"committee", "/committee", bearer(t, "chair@example.com", "committee"), http.StatusOK},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            req := httptest.NewRequest(http.MethodGet, tc.path, nil)
            if tc.auth != "" {
                req.Header.Set("Authorization", tc.auth)
            }
            rec := httptest.NewRecorder()
            e.ServeHTTP(rec, req)
            if rec.Code != tc.want {
                t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
            }
        })
    }
}

func TestJWTAuthRejectsOtherSecret(t *testing.T) {
    e := echo.New()
    e.Use(JWTAuth(secret))
    e.GET("/me", whoami)

    tok, _ := utils.NewAccessToken("another-secret", "mallory", "committee", time.Hour)
    req := httptest.NewRequest(http.MethodGet, "/me", nil)
    req.Header.Set("Authorization", "Bearer "+tok.Token)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("status = %d", rec.Code)
    }
}

func TestFixedWindow(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })

    cfg := config.RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute, Prefix: "rl"}
    e := echo.New()
    e.Use(JWTAuth(secret))
    e.POST("/book", whoami, NewFixedWindow(cfg, rdb, nil))

    alice := bearer(t, "alice", "resident")
    bob := bearer(t, "bob", "resident")
    send := func(auth string) *httptest.ResponseRecorder {
        req := httptest.NewRequest(http.MethodPost, "/book", nil)
        req.Header.Set("Authorization", auth)
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        return rec
    }

    for i := 0; i < 2; i++ {
        if rec := send(alice); rec.Code != http.StatusOK {
            t.Fatalf("request %d: status = %d", i+1, rec.Code)
        }
    }
    rec := send(alice)
    if rec.Code != http.StatusTooManyRequests {
        t.Fatalf("third request status = %d", rec.Code)
    }
    if rec.Header().Get("Retry-After") == "" {
        t.Error("Retry-After header missing")
    }
    if rec := send(bob); rec.Code != http.StatusOK {
        t.Fatalf("bob limited by alice's window: %d", rec.Code)
    }

    mr.FastForward(time.Minute)
    if rec := send(alice); rec.Code != http.StatusOK {
        t.Fatalf("after window reset: status = %d", rec.Code)
    }
}

func TestFixedWindowDisabled(t *testing.T) {
    e := echo.New()
    e.POST("/book", whoami, NewFixedWindow(config.RateLimitConfig{Enabled: true, Limit: 1}, nil, nil))
    for i := 0; i < 3; i++ {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/book", nil))
        if rec.Code != http.StatusOK {
            t.Fatalf("status = %d", rec.Code)
        }
    }
}
