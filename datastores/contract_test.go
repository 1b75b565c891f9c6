package datastores

import (
	"context"
	"errors"
	"testing"
)

type storeFactory func(t *testing.T) ContactsStore

// runContactsStoreContract exercises the behaviour every [ContactsStore]
// implementation shares. newStore must return an empty store.
func runContactsStoreContract(t *testing.T, newStore storeFactory) {
	t.Helper()

	t.Run("CreateThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		c := &Contact{Name: "Ada Lovelace", Number: "39-44-5323523"}
		id, err := s.Create(ctx, c)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if id == "" || c.ID != id {
			t.Fatalf("Create id=%q, contact id=%q", id, c.ID)
		}

		got, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		want := Contact{ID: id, Name: "Ada Lovelace", Number: "39-44-5323523"}
		if *got != want {
			t.Fatalf("Get = %+v, want %+v", *got, want)
		}
	})

	t.Run("ListInInsertionOrder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		empty, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List empty: %v", err)
		}
		if empty == nil || len(empty) != 0 {
			t.Fatalf("List empty = %#v, want empty non-nil slice", empty)
		}

		names := []string{"Arto Hellas", "Ada Lovelace", "Dan Abramov"}
		ids := make([]ContactID, 0, len(names))
		for _, name := range names {
			id, err := s.Create(ctx, &Contact{Name: name, Number: "040-123456"})
			if err != nil {
				t.Fatalf("Create %s: %v", name, err)
			}
			ids = append(ids, id)
		}

		cs, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(cs) != len(names) {
			t.Fatalf("List len = %d, want %d", len(cs), len(names))
		}
		for i, c := range cs {
			if c.ID != ids[i] || c.Name != names[i] {
				t.Fatalf("List[%d] = %+v, want id %q name %q", i, c, ids[i], names[i])
			}
		}

		n, err := s.Count(ctx)
		if err != nil || n != len(names) {
			t.Fatalf("Count = %d, %v, want %d", n, err, len(names))
		}
	})

	t.Run("DuplicateNameIgnoresCase", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Create(ctx, &Contact{Name: "Dan Abramov", Number: "12-43-234345"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		_, err := s.Create(ctx, &Contact{Name: "dan ABRAMOV", Number: "12-43-999999"})
		if !errors.Is(err, ErrDuplicateName) {
			t.Fatalf("Create duplicate err = %v, want ErrDuplicateName", err)
		}
		n, err := s.Count(ctx)
		if err != nil || n != 1 {
			t.Fatalf("Count = %d, %v, want 1", n, err)
		}
	})

	t.Run("DuplicateNameFoldsCase", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Create(ctx, &Contact{Name: "Hans Straße", Number: "040-123456"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		for _, name := range []string{"HANS STRASSE", "hans strasse"} {
			if _, err := s.Create(ctx, &Contact{Name: name, Number: "040-123456"}); !errors.Is(err, ErrDuplicateName) {
				t.Fatalf("Create %q err = %v, want ErrDuplicateName", name, err)
			}
		}
		n, err := s.Count(ctx)
		if err != nil || n != 1 {
			t.Fatalf("Count = %d, %v, want 1", n, err)
		}
	})

	t.Run("UpdateKeepsID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, &Contact{Name: "Mary Poppendieck", Number: "39-23-6423122"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		updated, err := s.Update(ctx, id, &Contact{Name: "Mary Poppendieck", Number: "040-999999"})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.ID != id || updated.Number != "040-999999" {
			t.Fatalf("Update = %+v", updated)
		}

		// Changing only the case of the own name is not a conflict.
		if _, err := s.Update(ctx, id, &Contact{Name: "MARY Poppendieck", Number: "040-999999"}); err != nil {
			t.Fatalf("Update case: %v", err)
		}

		cs, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(cs) != 1 || cs[0].ID != id || cs[0].Name != "MARY Poppendieck" {
			t.Fatalf("List after update = %+v", cs)
		}
	})

	t.Run("UpdateConflicts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Create(ctx, &Contact{Name: "Arto Hellas", Number: "040-123456"}); err != nil {
			t.Fatalf("Create a: %v", err)
		}
		id, err := s.Create(ctx, &Contact{Name: "Ada Lovelace", Number: "39-44-5323523"})
		if err != nil {
			t.Fatalf("Create b: %v", err)
		}
		_, err = s.Update(ctx, id, &Contact{Name: "arto hellas", Number: "040-123456"})
		if !errors.Is(err, ErrDuplicateName) {
			t.Fatalf("Update err = %v, want ErrDuplicateName", err)
		}
		got, err := s.Get(ctx, id)
		if err != nil || got.Name != "Ada Lovelace" {
			t.Fatalf("Get after failed update = %+v, %v", got, err)
		}

		// The old name is released by a rename.
		if _, err := s.Update(ctx, id, &Contact{Name: "Augusta Ada King", Number: "39-44-5323523"}); err != nil {
			t.Fatalf("Update rename: %v", err)
		}
		if _, err := s.Create(ctx, &Contact{Name: "Ada Lovelace", Number: "39-44-5323523"}); err != nil {
			t.Fatalf("Create released name: %v", err)
		}
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Create(ctx, &Contact{Name: "Arto Hellas", Number: "040-123456"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Delete(ctx, id); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, id); !errors.Is(err, ErrObjectNotFound) {
			t.Fatalf("Get deleted err = %v, want ErrObjectNotFound", err)
		}
		if err := s.Delete(ctx, id); err != nil {
			t.Fatalf("Delete again: %v", err)
		}
		if _, err := s.Update(ctx, id, &Contact{Name: "Arto Hellas", Number: "040-123456"}); !errors.Is(err, ErrObjectNotFound) {
			t.Fatalf("Update deleted err = %v, want ErrObjectNotFound", err)
		}

		// The name of a deleted contact can be used again.
		if _, err := s.Create(ctx, &Contact{Name: "arto hellas", Number: "040-123456"}); err != nil {
			t.Fatalf("Create after delete: %v", err)
		}
		n, err := s.Count(ctx)
		if err != nil || n != 1 {
			t.Fatalf("Count = %d, %v, want 1", n, err)
		}
	})
}
