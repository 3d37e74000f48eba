package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"verifyapi/internal/catalog"
	"verifyapi/internal/identity"
	"verifyapi/internal/model"
	"verifyapi/internal/repository/memory"
	"verifyapi/internal/service"
	"verifyapi/internal/storage"
)

const (
	typeRUT      = 1
	typeCamara   = 2
	typeOptional = 3
)

type harness struct {
	docs         *memory.DocumentStore
	documents    service.DocumentService
	completeness service.CompletenessService
	gate         *service.Gate
	roles        service.RoleService
	farms        service.FarmService
}

func newHarness(types []model.DocumentType) *harness {
	cat, err := catalog.NewStatic(types)
	Expect(err).NotTo(HaveOccurred())

	docs := memory.NewDocumentStore()
	farms := memory.NewFarmStore()
	grants := memory.NewRoleGrantStore()
	completeness := service.NewCompletenessService(docs, farms, grants, cat)
	gate := service.NewGate(completeness)
	return &harness{
		docs:         docs,
		documents:    service.NewDocumentService(docs, farms, grants, cat, storage.NewMemory()),
		completeness: completeness,
		gate:         gate,
		roles:        service.NewRoleService(grants, farms, gate),
		farms:        service.NewFarmService(farms, grants),
	}
}

func standardCatalog() []model.DocumentType {
	return []model.DocumentType{
		{ID: typeRUT, Name: "T1", Mandatory: true},
		{ID: typeCamara, Name: "T2", Mandatory: true},
		{ID: typeOptional, Name: "Brochure"},
	}
}

var (
	admin = identity.WithActor(context.Background(), identity.NewActor("admin-1", "ADMIN"))
	owner = identity.WithActor(context.Background(), identity.NewActor("owner-1", "FINCA"))
)

func (h *harness) submit(farmID string, typeID int) *model.Document {
	doc, err := h.documents.Submit(owner, service.SubmitInput{
		FarmID:         farmID,
		DocumentTypeID: typeID,
		File:           strings.NewReader("%PDF-1.4"),
		Filename:       "scan.pdf",
		ContentType:    "application/pdf",
		Size:           8,
	})
	Expect(err).NotTo(HaveOccurred())
	return doc
}

func (h *harness) settle(farmID string, typeID int, status model.Status) {
	doc := h.submit(farmID, typeID)
	switch status {
	case model.StatusApproved:
		_, err := h.documents.Review(admin, doc.ID, model.DecisionApprove, "")
		Expect(err).NotTo(HaveOccurred())
	case model.StatusRejected:
		_, err := h.documents.Review(admin, doc.ID, model.DecisionReject, "illegible scan")
		Expect(err).NotTo(HaveOccurred())
	}
}

var _ = Describe("Farm verification workflow", func() {
	var (
		h     *harness
		farm  *model.Farm
		grant *model.RoleGrant
	)

	BeforeEach(func() {
		h = newHarness(standardCatalog())

		var err error
		farm, err = h.farms.Create(owner, service.FarmInput{LegalName: "Flores F", Tag: "FF", TaxID: "900"})
		Expect(err).NotTo(HaveOccurred())
		grant, err = h.roles.RequestRole(owner, "owner-1", model.RoleFinca, model.GrantMetadata{FarmID: farm.ID})
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports the outstanding type when only T1 is approved", func() {
		h.settle(farm.ID, typeRUT, model.StatusApproved)

		c, err := h.completeness.Evaluate(admin, farm.ID)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.Complete).To(BeFalse())
		Expect(c.PendingTypes).To(Equal([]model.PendingType{{ID: typeCamara, Name: "T2"}}))
		Expect(c.ApprovedCount).To(Equal(1))
		Expect(c.TotalMandatory).To(Equal(2))
	})

	It("approves the FINCA grant once T2 is approved too", func() {
		h.settle(farm.ID, typeRUT, model.StatusApproved)
		h.settle(farm.ID, typeCamara, model.StatusApproved)

		c, err := h.completeness.Evaluate(admin, farm.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Complete).To(BeTrue())
		Expect(c.PendingTypes).To(BeEmpty())
		Expect(c.ApprovedCount).To(Equal(2))

		approved, err := h.roles.Approve(admin, grant.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(approved.Status).To(Equal(model.StatusApproved))
	})

	It("blocks the approval while T2 is rejected and leaves the grant pending", func() {
		h.settle(farm.ID, typeRUT, model.StatusApproved)
		h.settle(farm.ID, typeCamara, model.StatusRejected)

		c, err := h.completeness.Evaluate(admin, farm.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Complete).To(BeFalse())

		_, err = h.roles.Approve(admin, grant.ID)
		Expect(err).To(MatchError(service.ErrPreconditionFailed))
		var se *service.Error
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.PendingTypes).To(ConsistOf(model.PendingType{ID: typeCamara, Name: "T2"}))

		still, err := h.roles.Get(admin, grant.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(still.Status).To(Equal(model.StatusPending))
	})

	It("lets exactly one of two concurrent opposite reviews win", func() {
		doc := h.submit(farm.ID, typeRUT)

		var (
			wg   sync.WaitGroup
			errs = make([]error, 2)
		)
		wg.Add(2)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			_, errs[0] = h.documents.Review(admin, doc.ID, model.DecisionApprove, "")
		}()
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			_, errs[1] = h.documents.Review(admin, doc.ID, model.DecisionReject, "blurry")
		}()
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			Expect(err).To(MatchError(service.ErrInvalidTransition))
		}
		Expect(wins).To(Equal(1))

		final, err := h.documents.Get(admin, doc.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(final.Status.IsTerminal()).To(BeTrue())
		Expect(final.ReviewedAt).NotTo(BeNil())
	})

	It("never leaves a terminal document", func() {
		doc := h.submit(farm.ID, typeRUT)
		_, err := h.documents.Review(admin, doc.ID, model.DecisionApprove, "")
		Expect(err).NotTo(HaveOccurred())

		for _, d := range []model.Decision{model.DecisionApprove, model.DecisionReject} {
			_, err := h.documents.Review(admin, doc.ID, d, "second thoughts")
			Expect(err).To(MatchError(service.ErrInvalidTransition))
		}
	})

	It("keeps a comment on every rejected document", func() {
		doc := h.submit(farm.ID, typeCamara)

		_, err := h.documents.Review(admin, doc.ID, model.DecisionReject, "  ")
		Expect(err).To(MatchError(service.ErrValidation))

		h.settle(farm.ID, typeCamara, model.StatusRejected)
		docs, err := h.documents.ListByFarm(admin, farm.ID)
		Expect(err).NotTo(HaveOccurred())
		for _, d := range docs {
			if d.Status == model.StatusRejected {
				Expect(d.Comment).NotTo(BeEmpty())
			}
			Expect(d.ReviewedAt == nil).To(Equal(d.Status == model.StatusPending))
		}
	})

	It("counts only the latest resubmission", func() {
		h.settle(farm.ID, typeRUT, model.StatusApproved)
		h.settle(farm.ID, typeCamara, model.StatusApproved)
		h.submit(farm.ID, typeCamara)

		ok, err := h.gate.CanApproveFinca(admin, farm.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		latest, err := h.documents.LatestFor(admin, farm.ID, typeCamara)
		Expect(err).NotTo(HaveOccurred())
		Expect(latest.Status).To(Equal(model.StatusPending))
	})

	It("answers InvalidTransition to a second rejection", func() {
		first, err := h.roles.Reject(admin, grant.ID, "no export license")
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Status).To(Equal(model.StatusRejected))

		_, err = h.roles.Reject(admin, grant.ID, "no export license")
		Expect(err).To(MatchError(service.ErrInvalidTransition))

		again, err := h.roles.Get(admin, grant.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Status).To(Equal(model.StatusRejected))
	})

	It("rejects an incomplete farm's grant outright", func() {
		rejected, err := h.roles.Reject(admin, grant.ID, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(rejected.Status).To(Equal(model.StatusRejected))
	})

	DescribeTable("approve succeeds if and only if the gate allows it",
		func(t1, t2 model.Status) {
			for typeID, st := range map[int]model.Status{typeRUT: t1, typeCamara: t2} {
				if st != "" {
					h.settle(farm.ID, typeID, st)
				}
			}

			allowed, err := h.gate.CanApproveFinca(admin, farm.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = h.roles.Approve(admin, grant.ID)
			if allowed {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(service.ErrPreconditionFailed))
			}
			Expect(allowed).To(Equal(t1 == model.StatusApproved && t2 == model.StatusApproved))
		},
		Entry("nothing submitted", model.Status(""), model.Status("")),
		Entry("T1 pending", model.StatusPending, model.StatusApproved),
		Entry("T2 rejected", model.StatusApproved, model.StatusRejected),
		Entry("T2 missing", model.StatusApproved, model.Status("")),
		Entry("both approved", model.StatusApproved, model.StatusApproved),
	)
})

var _ = Describe("An empty mandatory catalog", func() {
	It("is complete for any farm", func() {
		h := newHarness([]model.DocumentType{{ID: typeOptional, Name: "Brochure"}})
		for _, tag := range []string{"A", "B"} {
			f, err := h.farms.Create(admin, service.FarmInput{LegalName: "Farm " + tag, Tag: tag, TaxID: "nit-" + tag})
			Expect(err).NotTo(HaveOccurred())

			c, err := h.completeness.Evaluate(admin, f.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Complete).To(BeTrue())
			Expect(c.TotalMandatory).To(BeZero())
		}
	})
})

// meetingGrants holds each farm lookup until the expected number of callers
// have read the same snapshot.
type meetingGrants struct {
	*memory.RoleGrantStore
	arrived sync.WaitGroup
}

func (m *meetingGrants) ListByFarm(ctx context.Context, farmID string) ([]model.RoleGrant, error) {
	res, err := m.RoleGrantStore.ListByFarm(ctx, farmID)
	m.arrived.Done()
	m.arrived.Wait()
	return res, err
}

var _ = Describe("Concurrent FINCA requests for one farm", func() {
	It("grant exactly one of them", func() {
		cat, err := catalog.NewStatic(standardCatalog())
		Expect(err).NotTo(HaveOccurred())
		docs := memory.NewDocumentStore()
		farms := memory.NewFarmStore()
		_, err = farms.Create(admin, &model.Farm{ID: "farm-x", LegalName: "Flores X", Tag: "FX", TaxID: "901", Active: true})
		Expect(err).NotTo(HaveOccurred())

		grants := &meetingGrants{RoleGrantStore: memory.NewRoleGrantStore()}
		grants.arrived.Add(2)
		gate := service.NewGate(service.NewCompletenessService(docs, farms, grants, cat))
		roles := service.NewRoleService(grants, farms, gate)

		var (
			wg   sync.WaitGroup
			errs = make([]error, 2)
		)
		for i, user := range []string{"owner-a", "owner-b"} {
			i, user := i, user
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				ctx := identity.WithActor(context.Background(), identity.NewActor(user, "CLIENTE"))
				_, errs[i] = roles.RequestRole(ctx, user, model.RoleFinca, model.GrantMetadata{FarmID: "farm-x"})
			}()
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			Expect(err).To(MatchError(service.ErrConflict))
		}
		Expect(wins).To(Equal(1))

		pending, err := roles.ListPending(admin, model.RoleFinca, 10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Total).To(Equal(1))
	})
})
