package services

import (
	"context"
	"testing"

	"splitcircle/internal/store"
)

type erasureRecorder struct {
	order *[]string
}

func (r erasureRecorder) record(step string) error {
	*r.order = append(*r.order, step)
	return nil
}

func TestDeleteAccountErasureOrder(t *testing.T) {
	var order []string
	rec := erasureRecorder{order: &order}

	users := stubErasureUserStore{rec: rec}
	members := stubMemberStore{
		deleteByUserFn: func(context.Context, store.Execer, string) error {
			return rec.record("memberships")
		},
		deleteByCircleFn: func(context.Context, store.Execer, string) error {
			return rec.record("orphan-members")
		},
	}
	expenses := stubExpenseStore{
		deleteByCreatorFn: func(context.Context, store.Execer, string) error {
			return rec.record("expenses")
		},
		deleteByCircleFn: func(context.Context, store.Execer, string) error {
			return rec.record("orphan-expenses")
		},
	}
	obligations := stubObligationStore{
		deleteByUserFn: func(context.Context, store.Execer, string) error {
			return rec.record("obligations-by-user")
		},
		deleteByExpenseCreatorFn: func(context.Context, store.Execer, string) error {
			return rec.record("obligations-by-creator")
		},
		deleteByCircleFn: func(context.Context, store.Execer, string) error {
			return rec.record("orphan-obligations")
		},
	}
	circles := stubCircleStore{
		listSoleMemberByUsrFn: func(context.Context, store.Selecter, string) ([]string, error) {
			return []string{"lonely-circle"}, nil
		},
		deleteFn: func(context.Context, store.Execer, string) error {
			return rec.record("orphan-circle")
		},
	}
	friends := stubErasureFriendStore{rec: rec}
	bankAccounts := stubErasureBankAccountStore{rec: rec}

	service := NewUserService(fakeTxRunner{}, users, members, expenses, obligations, circles, friends, bankAccounts)
	if err := service.DeleteAccount(context.Background(), "u1"); err != nil {
		t.Fatalf("delete account failed: %v", err)
	}

	want := []string{
		"obligations-by-user",
		"obligations-by-creator",
		"expenses",
		"memberships",
		"orphan-obligations",
		"orphan-expenses",
		"orphan-members",
		"orphan-circle",
		"friends",
		"bank-accounts",
		"user",
	}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("erasure step %d: expected %q, got %q (full order %v)", i, want[i], order[i], order)
		}
	}
}

func TestUpdatePhoneRunsInTransaction(t *testing.T) {
	var updated *string
	users := stubErasureUserStore{
		updatePhoneFn: func(_ context.Context, _ store.Execer, _ string, phone *string) error {
			updated = phone
			return nil
		},
	}
	service := NewUserService(fakeTxRunner{}, users, stubMemberStore{}, stubExpenseStore{}, stubObligationStore{}, stubCircleStore{}, stubErasureFriendStore{}, stubErasureBankAccountStore{})
	phone := "+15551234567"
	if err := service.UpdatePhone(context.Background(), "u1", &phone); err != nil {
		t.Fatalf("update phone failed: %v", err)
	}
	if updated == nil || *updated != phone {
		t.Fatalf("expected phone persisted, got %v", updated)
	}
}

type stubErasureUserStore struct {
	rec           erasureRecorder
	updatePhoneFn func(ctx context.Context, tx store.Execer, userID string, phone *string) error
}

func (s stubErasureUserStore) UpdatePhone(ctx context.Context, tx store.Execer, userID string, phone *string) error {
	if s.updatePhoneFn == nil {
		return nil
	}
	return s.updatePhoneFn(ctx, tx, userID, phone)
}

func (s stubErasureUserStore) Delete(ctx context.Context, tx store.Execer, userID string) error {
	if s.rec.order == nil {
		return nil
	}
	return s.rec.record("user")
}

type stubErasureFriendStore struct {
	rec erasureRecorder
}

func (s stubErasureFriendStore) DeleteByUser(ctx context.Context, tx store.Execer, userID string) error {
	if s.rec.order == nil {
		return nil
	}
	return s.rec.record("friends")
}

type stubErasureBankAccountStore struct {
	rec erasureRecorder
}

func (s stubErasureBankAccountStore) DeleteByUser(ctx context.Context, tx store.Execer, userID string) error {
	if s.rec.order == nil {
		return nil
	}
	return s.rec.record("bank-accounts")
}
