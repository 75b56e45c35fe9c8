package web

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) Mount(r chi.Router) {
	authenticated := AuthenticatedMiddleware()
	r.Use(SignatureMiddleware(h))

	r.Post("/profiles", CreateProfile(h))

	r.Group(func(r chi.Router) {
		r.Use(authenticated)

		r.Get("/profiles/{profileId}", GetProfile(h))
		r.Post("/signing-authorities", RegisterSigningAuthority(h))

		r.Route("/boosts", func(r chi.Router) {
			r.Post("/", CreateBoost(h))
			r.Get("/", ListBoosts(h))
			r.Get("/count", CountBoosts(h))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", GetBoost(h))
				r.Patch("/", UpdateBoost(h))
				r.Delete("/", DeleteBoost(h))

				r.Post("/children", CreateChildBoost(h))
				r.Get("/children", listRelatives(h, true))
				r.Get("/children/count", countRelatives(h, true))
				r.Get("/parents", listRelatives(h, false))
				r.Get("/parents/count", countRelatives(h, false))
				r.Put("/parents/{parentId}", MakeBoostParent(h))
				r.Delete("/parents/{parentId}", RemoveBoostParent(h))

				r.Get("/permissions", GetBoostPermissions(h))
				r.Patch("/permissions", UpdateBoostPermissions(h))
				r.Get("/permissions/{profileId}", GetOtherBoostPermissions(h))
				r.Patch("/permissions/{profileId}", UpdateOtherBoostPermissions(h))

				r.Get("/admins", GetBoostAdmins(h))
				r.Put("/admins/{profileId}", AddBoostAdmin(h))
				r.Delete("/admins/{profileId}", RemoveBoostAdmin(h))

				r.Post("/send", SendBoost(h))

				r.Get("/recipients", GetBoostRecipients(h))
				r.Get("/recipients/count", GetBoostRecipientCount(h))
				r.Get("/recipients/connected", GetConnectedRecipients(h))
				r.Get("/recipients/connected/count", CountConnectedRecipients(h))
				r.Delete("/recipients/{profileId}", RevokeBoostRecipient(h))

				r.Get("/hooks", GetClaimHooks(h))
				r.Post("/claim-links", GenerateClaimLink(h))
				r.Post("/claim", ClaimBoost(h))
			})
		})

		r.Post("/hooks", CreateClaimHook(h))
		r.Delete("/hooks/{hookId}", DeleteClaimHook(h))

		r.Post("/credentials/{id}/accept", AcceptCredential(h))
	})
}
