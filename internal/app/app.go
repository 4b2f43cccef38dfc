package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskcatalog/internal/catalog"
	"github.com/vk/taskcatalog/internal/catalogio"
	"github.com/vk/taskcatalog/internal/ctxlog"
	"github.com/vk/taskcatalog/internal/syntaxcheck"
	"github.com/vk/taskcatalog/internal/taskdefaults"
	"github.com/vk/taskcatalog/internal/taskgraph"
	"github.com/zclconf/go-cty/cty"
)

// AppConfig holds all the necessary configuration for an App instance to run.
type AppConfig struct {
	TasksPath string
	LogFormat string
	LogLevel  string
	Debug     bool
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle: a logger, the resolved base-task graph, and the lookup
// facade built on top of it.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	resolver *taskgraph.Resolver
	catalog  *catalog.Catalog
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, a
// resolved base-task graph, and a ready-to-query catalog.
func NewApp(outW io.Writer, appConfig *AppConfig) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	doc, err := catalogio.LoadDocument(ctx, appConfig.TasksPath)
	if err != nil {
		// A failure to load the task documents is a fatal startup error.
		panic(fmt.Errorf("failed to load task documents: %w", err))
	}
	logger.Debug("Task documents loaded.")

	defaults := taskdefaults.New()
	resolver := taskgraph.New(defaults, appConfig.Debug)
	if err := resolver.Parse(doc); err != nil {
		panic(fmt.Errorf("failed to resolve task graph: %w", err))
	}
	logger.Debug("Task graph resolved.", "task_count", len(resolver.All()))

	cat := catalog.New(resolver, defaults, doc)

	if appConfig.Debug {
		if err := runSyntaxCheck(resolver, doc, cat); err != nil {
			panic(fmt.Errorf("syntax check failed: %w", err))
		}
		logger.Debug("Syntax check passed.")
	}

	return &App{
		outW:     outW,
		logger:   logger,
		resolver: resolver,
		catalog:  cat,
	}
}

// Catalog returns the application's lookup facade. This is the seam
// executor code outside this module queries through.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// runSyntaxCheck runs component G over every task the resolver produced,
// aggregating every problem found into a single error rather than
// failing on the first. CheckKeys validates against the raw declared
// body (matching TaskData.cpp::syntax_check, which inspects the raw
// JSON), but CheckTaskLists must walk the *expanded* flow lists
// (matching TaskData.cpp:159's loop over m_all_tasks_info, the expanded
// table) — a raw list can still hold unevaluated list-expressions like
// "H#next" or "(A+B)*3", which are not task names and would otherwise
// be misreported as null references.
func runSyntaxCheck(resolver *taskgraph.Resolver, doc cty.Value, cat *catalog.Catalog) error {
	var diags hcl.Diagnostics
	for name, task := range resolver.All() {
		body := taskgraph.Body(doc, name)
		syntaxcheck.CheckKeys(&diags, name, body, task)

		expanded, err := cat.Get(name)
		if err != nil {
			diags = diags.Append(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "failed to expand task",
				Detail:   fmt.Sprintf("task %q: %v", name, err),
			})
			continue
		}
		syntaxcheck.CheckTaskLists(&diags, name, expanded, cat)
	}
	if diags.HasErrors() {
		return diags
	}
	return nil
}
