package services

import (
	"context"
	"errors"
	"testing"

	"github.com/atrule/invoicing/internal/models"
)

func TestAddBankAccountDefaultDisplacesExisting(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewOwnerService(conn)

	first, err := svc.AddBankAccount(context.Background(), BankAccountInput{
		OwnerProfileID: f.owner.ID,
		Label:          "Main USD",
		AccountNumber:  "0001",
		CurrencyID:     f.usd.ID,
		IsDefault:      true,
	})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	second, err := svc.AddBankAccount(context.Background(), BankAccountInput{
		OwnerProfileID: f.owner.ID,
		Label:          "Backup USD",
		AccountNumber:  "0002",
		CurrencyID:     f.usd.ID,
		IsDefault:      true,
	})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}

	var defaults []models.OwnerBankAccount
	err = conn.Where("owner_profile_id = ? AND currency_id = ? AND is_default = ?", f.owner.ID, f.usd.ID, true).
		Find(&defaults).Error
	if err != nil {
		t.Fatalf("query defaults: %v", err)
	}
	if len(defaults) != 1 {
		t.Fatalf("defaults = %d, want exactly 1", len(defaults))
	}
	if defaults[0].ID != second.ID {
		t.Errorf("default = %d, want latest %d", defaults[0].ID, second.ID)
	}
	_ = first
}

func TestSetDefaultBankAccountSwaps(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewOwnerService(conn)

	first, err := svc.AddBankAccount(context.Background(), BankAccountInput{
		OwnerProfileID: f.owner.ID,
		Label:          "A",
		AccountNumber:  "0001",
		CurrencyID:     f.usd.ID,
		IsDefault:      true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := svc.AddBankAccount(context.Background(), BankAccountInput{
		OwnerProfileID: f.owner.ID,
		Label:          "B",
		AccountNumber:  "0002",
		CurrencyID:     f.usd.ID,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.SetDefaultBankAccount(context.Background(), second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}

	got, err := svc.DefaultBankAccount(context.Background(), f.owner.ID, f.usd.ID)
	if err != nil {
		t.Fatalf("default lookup: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("default = %d, want %d", got.ID, second.ID)
	}

	var reloaded models.OwnerBankAccount
	if err := conn.First(&reloaded, first.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.IsDefault {
		t.Error("previous default not demoted")
	}
}

func TestDefaultsAreIndependentPerCurrency(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewOwnerService(conn)

	usdAcct, err := svc.AddBankAccount(context.Background(), BankAccountInput{
		OwnerProfileID: f.owner.ID,
		Label:          "USD",
		AccountNumber:  "0001",
		CurrencyID:     f.usd.ID,
		IsDefault:      true,
	})
	if err != nil {
		t.Fatalf("add usd: %v", err)
	}
	if _, err := svc.AddBankAccount(context.Background(), BankAccountInput{
		OwnerProfileID: f.owner.ID,
		Label:          "GBP",
		AccountNumber:  "0002",
		CurrencyID:     f.gbp.ID,
		IsDefault:      true,
	}); err != nil {
		t.Fatalf("add gbp: %v", err)
	}

	// The GBP default must not displace the USD one.
	var reloaded models.OwnerBankAccount
	if err := conn.First(&reloaded, usdAcct.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.IsDefault {
		t.Error("usd default displaced by gbp default")
	}
}

func TestDeleteBankAccountClearsDefault(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewOwnerService(conn)

	acct, err := svc.AddBankAccount(context.Background(), BankAccountInput{
		OwnerProfileID: f.owner.ID,
		Label:          "Main",
		AccountNumber:  "0001",
		CurrencyID:     f.usd.ID,
		IsDefault:      true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.DeleteBankAccount(context.Background(), acct.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.DefaultBankAccount(context.Background(), f.owner.ID, f.usd.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("default after delete: %v, want not found", err)
	}
}

func TestAddBankAccountUnknownOwner(t *testing.T) {
	conn := openTestDB(t)
	f := seedGraph(t, conn)
	svc := NewOwnerService(conn)

	_, err := svc.AddBankAccount(context.Background(), BankAccountInput{
		OwnerProfileID: 999,
		Label:          "X",
		AccountNumber:  "0003",
		CurrencyID:     f.usd.ID,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
