package core

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("Ledger", func() {
	var (
		store  *fakeStore
		ledger *Ledger
	)

	BeforeEach(func() {
		store = &fakeStore{}
	})

	JustBeforeEach(func() {
		ledger = LoadLedger(context.Background(), store, zap.NewNop())
	})

	When("the store has persisted ids", func() {
		BeforeEach(func() {
			store.loadIDs = []string{"m1", "m2", ""}
		})

		It("loads them, dropping empty ids", func() {
			Expect(ledger.Contains("m1")).To(BeTrue())
			Expect(ledger.Contains("m2")).To(BeTrue())
			Expect(ledger.Len()).To(Equal(2))
		})
	})

	When("the store fails to load", func() {
		BeforeEach(func() {
			store.loadErr = errors.New("corrupt state")
		})

		It("starts empty instead of failing", func() {
			Expect(ledger.Len()).To(Equal(0))
		})
	})

	It("makes added ids visible immediately", func() {
		Expect(ledger.Contains("m1")).To(BeFalse())
		ledger.Add("m1")
		Expect(ledger.Contains("m1")).To(BeTrue())
	})

	It("treats repeated adds as a no-op", func() {
		ledger.Add("m1")
		ledger.Add("m1")
		Expect(ledger.Len()).To(Equal(1))
	})

	It("persists a sorted snapshot", func() {
		ledger.Add("zeta")
		ledger.Add("alpha")
		ledger.Add("mike")

		Expect(ledger.Save(context.Background())).To(Succeed())
		Expect(store.saved).To(HaveLen(1))
		Expect(store.saved[0]).To(Equal([]string{"alpha", "mike", "zeta"}))
	})

	It("propagates store save failures", func() {
		store.saveErr = errors.New("disk full")
		Expect(ledger.Save(context.Background())).NotTo(Succeed())
	})
})
