package trx

import (
	"log"
	"net/http"
	"os"

	"ArthaFlowSaas/api"
	"ArthaFlowSaas/internal/dashboard"
	"ArthaFlowSaas/internal/exception"
	"ArthaFlowSaas/internal/extraction"
	"ArthaFlowSaas/internal/lifecycle"
	"ArthaFlowSaas/internal/notification"
	"ArthaFlowSaas/internal/reconcile"
	"ArthaFlowSaas/internal/revision"
	"ArthaFlowSaas/internal/store"
	"ArthaFlowSaas/internal/submission"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps bundles everything the transaction handlers need. One instance is
// built at service start and shared by all handler closures.
type Deps struct {
	Store      *store.Store
	Guard      *lifecycle.Guard
	Engine     *reconcile.Engine
	Extractor  extraction.Provider
	Sink       *notification.Sink
	Submitter  *submission.Submitter
	Exceptions *exception.Manager
	Revisions  *revision.Manager
	UploadDir  string
}

func buildDeps(pgxPool *pgxpool.Pool, uploadDir string) *Deps {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	st := store.New(pgxPool)
	guard := lifecycle.NewGuard()
	engine := reconcile.NewEngine()
	sink := notification.NewSink(pgxPool)
	sink.SetPublisher(dashboard.NewSSEServer())
	submitter := submission.NewSubmitter(guard, st, sink)
	return &Deps{
		Store:      st,
		Guard:      guard,
		Engine:     engine,
		Extractor:  extraction.NewAutoExtractor(),
		Sink:       sink,
		Submitter:  submitter,
		Exceptions: exception.NewManager(st, engine, submitter, sink),
		Revisions:  revision.NewManager(st, guard, submitter, sink, 0),
		UploadDir:  uploadDir,
	}
}

func StartTrxService(pgxPool *pgxpool.Pool, uploadDir string) {
	d := buildDeps(pgxPool, uploadDir)

	mux := http.NewServeMux()
	mux.HandleFunc("/trx/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Trx Service is active"))
	})

	mux.Handle("/trx/create", api.SessionMiddleware(CreateTransaction(d)))
	mux.Handle("/trx/update", api.SessionMiddleware(UpdateTransaction(d)))
	mux.Handle("/trx/get", api.SessionMiddleware(GetTransaction(d)))
	mux.Handle("/trx/list", api.SessionMiddleware(ListTransactions(d)))
	mux.Handle("/trx/versions", api.SessionMiddleware(GetVersionHistory(d)))

	mux.Handle("/trx/submit", api.SessionMiddleware(SubmitWithDocument(d)))
	mux.Handle("/trx/document/latest", api.SessionMiddleware(GetLatestDocument(d)))

	mux.Handle("/trx/review/claim", api.SessionMiddleware(ClaimForReview(d)))
	mux.Handle("/trx/review/approve", api.SessionMiddleware(ApproveTransaction(d)))
	mux.Handle("/trx/review/reject", api.SessionMiddleware(RejectTransaction(d)))
	mux.Handle("/trx/review/return", api.SessionMiddleware(ReturnTransaction(d)))

	mux.Handle("/trx/revision/access", api.SessionMiddleware(GetRevisionAccess(d)))
	mux.Handle("/trx/revision/save", api.SessionMiddleware(SaveRevision(d)))
	mux.Handle("/trx/revision/resubmit", api.SessionMiddleware(ResubmitTransaction(d)))

	mux.Handle("/trx/case/get", api.SessionMiddleware(GetExceptionCase(d)))
	mux.Handle("/trx/case/patch", api.SessionMiddleware(PatchExceptionCase(d)))
	mux.Handle("/trx/case/recheck", api.SessionMiddleware(RecheckExceptionCase(d)))

	mux.Handle("/trx/items/upload", api.SessionMiddleware(UploadItems(d)))

	mux.Handle("/trx/queue/list", api.SessionMiddleware(ListResolutionQueue(d)))
	mux.Handle("/trx/queue/export", api.SessionMiddleware(ExportResolutionQueue(d)))

	mux.HandleFunc("/trx/notify/stream", dashboard.GetSSEServer().HandleSSE)

	log.Println("Trx Service started on :7143")
	err := http.ListenAndServe(":7143", mux)
	if err != nil {
		log.Fatalf("Trx Service failed: %v", err)
	}
}
