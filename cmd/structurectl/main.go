// Command structurectl manages course structures outside the API. When an
// API reset reports reset_not_converged, run -mode purge: it deletes the
// course's rows by id without consulting the existence check. Then
// -mode generate rebuilds the default tree.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/app"
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var courses, codes idList
	var mode string
	var force, dryRun bool
	flag.Var(&courses, "course", "course id (repeatable)")
	flag.Var(&codes, "code", "course code (repeatable)")
	flag.StringVar(&mode, "mode", "status", "status | generate | reset | purge")
	flag.BoolVar(&force, "force", false, "generate even when the oracle reports a structure")
	flag.BoolVar(&dryRun, "dry-run", false, "print the courses that would be touched")
	flag.Parse()

	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case "status", "generate", "reset", "purge":
	default:
		fmt.Printf("unknown -mode %q\n", mode)
		os.Exit(2)
	}

	a, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx := context.Background()
	ids, err := resolveCourses(ctx, a, courses, codes)
	if err != nil {
		fmt.Printf("resolve courses: %v\n", err)
		os.Exit(1)
	}
	if len(ids) == 0 {
		fmt.Println("no courses selected; pass -course or -code")
		return
	}

	// operator actions run with full structure rights
	operator := &services.ActorContext{Role: coursework.RoleAdmin}
	failed := 0
	for _, id := range ids {
		if dryRun && mode != "status" {
			fmt.Printf("%s: would %s (has_structure=%v)\n", id, mode, a.Services.Structure.HasStructure(ctx, id))
			continue
		}
		switch mode {
		case "status":
			fmt.Printf("%s: has_structure=%v\n", id, a.Services.Structure.HasStructure(ctx, id))
		case "generate":
			res, err := a.Services.Structure.Generate(ctx, operator, id, force)
			if err != nil {
				failed++
				fmt.Printf("%s: generate failed: %v\n", id, err)
				continue
			}
			fmt.Printf("%s: created %d nodes\n", id, res.Created)
		case "reset":
			res, err := a.Services.Structure.Reset(ctx, operator, id)
			if err != nil {
				failed++
				if errors.Is(err, services.ErrResetNotConverged) {
					fmt.Printf("%s: structure still present after %d attempts; rerun with -mode purge\n", id, res.Attempts)
					continue
				}
				fmt.Printf("%s: reset failed: %v\n", id, err)
				continue
			}
			fmt.Printf("%s: deleted %d, created %d, attempts %d, orphaned resources %d\n",
				id, res.Deleted, res.Created, res.Attempts, res.OrphanedResources)
		case "purge":
			res, err := a.Services.Structure.Purge(ctx, operator, id)
			if err != nil {
				failed++
				fmt.Printf("%s: purge failed: %v\n", id, err)
				continue
			}
			if res.Remaining > 0 {
				failed++
				fmt.Printf("%s: deleted %d of %d rows but %d remain; another writer is active\n", id, res.Deleted, res.Found, res.Remaining)
				continue
			}
			fmt.Printf("%s: purged %d rows\n", id, res.Deleted)
		}
	}
	if failed > 0 {
		a.Close()
		os.Exit(1)
	}
}

func resolveCourses(ctx context.Context, a *app.App, rawIDs, codes []string) ([]uuid.UUID, error) {
	dbc := dbctx.Background(ctx)
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, raw := range rawIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil || id == uuid.Nil {
			return nil, fmt.Errorf("invalid course id %q", raw)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, code := range codes {
		c, err := a.Repos.Course.GetByCode(dbc, services.NormalizeCourseCode(code))
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("no course with code %q", code)
		}
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c.ID)
		}
	}
	return out, nil
}
