package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/harrisonrobin/todosync/pkg/config"
	"github.com/harrisonrobin/todosync/pkg/convert"
	"github.com/harrisonrobin/todosync/pkg/identity"
	"github.com/harrisonrobin/todosync/pkg/model"
	"github.com/harrisonrobin/todosync/pkg/reconcile"
	"github.com/harrisonrobin/todosync/pkg/remote"
	"github.com/harrisonrobin/todosync/pkg/store"
)

const deadlineLayout = "2006-01-02 15:04"

func main() {
	// 1. Parse Flags
	addText := flag.String("add", "", "Add a task with the given text")
	priorityName := flag.String("priority", "normal", "Priority for -add: low, normal or high")
	deadlineStr := flag.String("deadline", "", "Deadline for -add, format '2006-01-02 15:04' (local time)")
	doneID := flag.String("done", "", "Mark the task with this id as done")
	deleteID := flag.String("delete", "", "Delete the task with this id")
	doList := flag.Bool("list", false, "Print the local task list")
	doSync := flag.Bool("sync", false, "Run a sync pass against the remote list")
	doPrune := flag.Bool("prune", false, "Remove tasks whose deadline has passed")
	setURL := flag.String("set-url", "", "Set the remote list service base URL")
	setToken := flag.String("set-token", "", "Set the remote list service bearer token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// 2. Handle Configuration Changes
	if *setURL != "" || *setToken != "" {
		if *setURL != "" {
			cfg.BaseURL = *setURL
		}
		if *setToken != "" {
			cfg.Token = *setToken
		}
		if err := config.Save(cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Println("Configuration saved.")
		return
	}

	// 3. Wire the store, gateway and reconciler
	ctx := context.Background()

	st, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Error opening task store: %v", err)
	}

	tagPath, err := identity.DefaultPath()
	if err != nil {
		log.Fatalf("Error locating device tag: %v", err)
	}
	deviceTag, err := identity.LoadOrCreate(tagPath)
	if err != nil {
		log.Fatalf("Error loading device tag: %v", err)
	}

	gateway := remote.NewClient(cfg.BaseURL, remote.NewHTTPClient(ctx, cfg.Token))
	conv := convert.New(deviceTag)
	rec := reconcile.New(st, gateway, conv)
	defer rec.Close()

	// 4. Dispatch
	switch {
	case *addText != "":
		priority, err := model.ParsePriority(*priorityName)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		var deadline *time.Time
		if *deadlineStr != "" {
			d, err := time.ParseInLocation(deadlineLayout, *deadlineStr, time.Local)
			if err != nil {
				log.Fatalf("Error parsing deadline: %v", err)
			}
			deadline = &d
		}
		task, err := rec.Add(ctx, model.New(*addText, priority, deadline))
		if err != nil {
			log.Fatalf("Error adding task: %v", err)
		}
		fmt.Printf("Added %s\n", task.ID)
		syncNow(ctx, rec)

	case *doneID != "":
		task, err := st.GetByID(ctx, *doneID)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		task.Done = true
		if _, err := rec.Update(ctx, task); err != nil {
			log.Fatalf("Error completing task: %v", err)
		}
		fmt.Printf("Completed %s\n", task.ID)
		syncNow(ctx, rec)

	case *deleteID != "":
		if err := rec.Remove(ctx, *deleteID); err != nil {
			log.Fatalf("Error deleting task: %v", err)
		}
		fmt.Printf("Deleted %s\n", *deleteID)

	case *doPrune:
		pruned, err := st.PruneExpired(ctx, time.Now())
		if err != nil {
			log.Fatalf("Error pruning expired tasks: %v", err)
		}
		for _, t := range pruned {
			fmt.Printf("Pruned %s (%s)\n", t.ID, t.Text)
		}
		fmt.Printf("%d expired tasks removed\n", len(pruned))

	case *doSync:
		syncNow(ctx, rec)

	case *doList:
		printList(ctx, rec)

	default:
		printList(ctx, rec)
	}
}

func syncNow(ctx context.Context, rec *reconcile.Reconciler) {
	if err := rec.RunSync(ctx); err != nil {
		log.Printf("Sync failed: %v", err)
		return
	}
	state := rec.States().Current()
	if state.Message != "" {
		fmt.Println(state.Message)
	}
}

func printList(ctx context.Context, rec *reconcile.Reconciler) {
	tasks, err := rec.Tasks(ctx)
	if err != nil {
		log.Fatalf("Error listing tasks: %v", err)
	}
	for _, t := range tasks {
		box := " "
		if t.Done {
			box = "x"
		}
		marker := " "
		if !t.Synced {
			marker = "*"
		}
		line := fmt.Sprintf("[%s]%s %-8s %s", box, marker, t.Priority, t.Text)
		if t.Deadline != nil {
			line += fmt.Sprintf("  (due %s)", t.Deadline.Local().Format(deadlineLayout))
		}
		fmt.Printf("%s  %s\n", line, t.ID)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
	}
}
