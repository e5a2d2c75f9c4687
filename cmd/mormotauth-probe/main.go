package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	mormotauth "github.com/restforge/mormotauth"
	"github.com/restforge/mormotauth/password"
)

func main() {
	var (
		baseURL   = flag.String("base", "http://localhost:888", "server origin")
		root      = flag.String("root", "root", "model root name")
		user      = flag.String("user", "User", "login name")
		plain     = flag.String("password", "", "plain password (hashed with the server's default salt)")
		hash      = flag.String("password-hash", "", "pre-hashed password; overrides -password")
		method    = flag.String("method", "", "model method to GET after login, e.g. DestList")
		params    = flag.String("params", "", "query parameters for -method, e.g. 'select=ID,Dest'")
		probes    = flag.Int("probes", 0, "number of timed signed GETs against -method")
		timeout   = flag.Duration("timeout", 10*time.Second, "per-request timeout")
		verbose   = flag.Bool("v", false, "debug logging")
		noMetrics = flag.Bool("no-metrics", false, "skip the counter dump at exit")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	passwordHash := *hash
	if passwordHash == "" {
		if *plain == "" {
			fmt.Fprintln(os.Stderr, "either -password or -password-hash is required")
			os.Exit(2)
		}
		passwordHash = password.Hash(*plain)
	}

	cfg := mormotauth.Config{
		BaseURL: strings.TrimRight(*baseURL, "/"),
		Root:    *root,
		HTTP: mormotauth.HTTPConfig{
			Timeout:   *timeout,
			UserAgent: "mormotauth-probe",
		},
		Metrics: mormotauth.MetricsConfig{Enabled: true},
	}

	client, err := mormotauth.New().WithConfig(cfg).WithLogger(log).Build()
	if err != nil {
		log.WithError(err).Fatal("build client")
	}
	defer client.Close()

	ctx := context.Background()

	start := time.Now()
	sess, err := client.Login(ctx, *user, passwordHash)
	if err != nil {
		log.WithError(err).Fatal("login failed")
	}
	if sess == nil {
		log.WithField("user", *user).Error("credentials rejected")
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"user":    *user,
		"session": sess.IDHex(),
		"took":    time.Since(start).Round(time.Millisecond),
	}).Info("authenticated")

	if *method != "" {
		query, err := url.ParseQuery(*params)
		if err != nil {
			log.WithError(err).Fatal("invalid -params")
		}
		runGet(ctx, log, client, *method, query)
		if *probes > 0 {
			runProbes(ctx, log, client, *method, query, *probes)
		}
	}

	if !*noMetrics {
		dumpCounters(client)
	}
}

func runGet(ctx context.Context, log *logrus.Logger, client *mormotauth.Client, method string, query url.Values) {
	resp, err := client.Get(ctx, method, query)
	if err != nil {
		log.WithError(err).Fatal("signed GET failed")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	log.WithFields(logrus.Fields{
		"method": method,
		"status": resp.StatusCode,
		"bytes":  len(body),
	}).Info("signed GET")
	if len(body) > 0 {
		fmt.Println(string(body))
	}
}

func runProbes(ctx context.Context, log *logrus.Logger, client *mormotauth.Client, method string, query url.Values, n int) {
	latencies := make([]time.Duration, 0, n)
	failures := 0

	start := time.Now()
	for i := 0; i < n; i++ {
		t0 := time.Now()
		resp, err := client.Get(ctx, method, query)
		d := time.Since(t0)
		if err != nil {
			failures++
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			failures++
			continue
		}
		latencies = append(latencies, d)
	}
	total := time.Since(start)

	if len(latencies) == 0 {
		log.WithField("failures", failures).Error("every probe failed")
		return
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	log.WithFields(logrus.Fields{
		"ops":      len(latencies),
		"failures": failures,
		"total":    total.Round(time.Millisecond),
		"ops/sec":  fmt.Sprintf("%.0f", float64(len(latencies))/total.Seconds()),
		"p50":      percentile(latencies, 50).Round(time.Microsecond),
		"p95":      percentile(latencies, 95).Round(time.Microsecond),
		"p99":      percentile(latencies, 99).Round(time.Microsecond),
	}).Info("probe results")
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func dumpCounters(client *mormotauth.Client) {
	snap := client.MetricsSnapshot()
	ids := make([]mormotauth.MetricID, 0, len(snap.Counters))
	for id := range snap.Counters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Println("---- counters ----")
	for _, id := range ids {
		fmt.Printf("%2d: %d\n", id, snap.Counters[id])
	}
}
