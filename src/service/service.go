package service

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/bobnet/bobsync/src/monitor"
	"github.com/bobnet/bobsync/src/peers"
	"github.com/bobnet/bobsync/src/snapshot"
	"github.com/sirupsen/logrus"
)

// Service exposes the monitor's latest report, the normalized peer lists and
// the snapshot progress over HTTP.
type Service struct {
	sync.Mutex

	bindAddress string
	logger      *logrus.Entry

	report   monitor.Report
	progress snapshot.Progress
	peerSet  *peers.Result
}

// NewService ...
func NewService(bindAddress string, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

// registerHandlers registers the API handlers with the DefaultServerMux of
// the http package. It is possible that another server in the same process is
// simultaneously using the DefaultServerMux. In which case, the handlers will
// be accessible from both servers.
func (s *Service) registerHandlers() {
	s.logger.Debug("Registering bobsync API handlers")
	http.HandleFunc("/status", s.makeHandler(s.GetStatus))
	http.HandleFunc("/peers", s.makeHandler(s.GetPeers))
	http.HandleFunc("/progress", s.makeHandler(s.GetProgress))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Serve calls ListenAndServe. This is a blocking call. It is not necessary to
// call Serve when another server has already been started with the
// DefaultServerMux and the same address:port combination.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving bobsync API")

	// Use the DefaultServerMux
	err := http.ListenAndServe(s.bindAddress, nil)
	if err != nil {
		s.logger.Error(err)
	}
}

// SetReport publishes the latest monitor report.
func (s *Service) SetReport(r monitor.Report) {
	s.Lock()
	defer s.Unlock()
	s.report = r
}

// SetProgress publishes the latest snapshot progress.
func (s *Service) SetProgress(p snapshot.Progress) {
	s.Lock()
	defer s.Unlock()
	s.progress = p
}

// SetPeers publishes the normalized peer lists.
func (s *Service) SetPeers(res *peers.Result) {
	s.Lock()
	defer s.Unlock()
	s.peerSet = res
}

// GetStatus ...
func (s *Service) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(s.report)
}

// GetPeers ...
func (s *Service) GetPeers(w http.ResponseWriter, r *http.Request) {
	if s.peerSet == nil {
		http.Error(w, "no peers loaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(s.peerSet)
}

// GetProgress ...
func (s *Service) GetProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(s.progress)
}
