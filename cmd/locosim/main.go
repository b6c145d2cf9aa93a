package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/milk9111/pursuit/prefabs"
	"github.com/milk9111/pursuit/sim"
)

func main() {
	levelName := flag.String("level", "step", "level name in prefabs/levels (basename, .yaml optional)")
	enemy := flag.String("enemy", "", "enemy prefab overriding the level's")
	target := flag.String("target", "", "target prefab overriding the level's")
	ticks := flag.Int("ticks", 600, "fixed steps to run")
	verbose := flag.Bool("v", false, "log per-tick events")
	watch := flag.Bool("watch", false, "keep running in real time and reload prefabs when they change on disk")
	flag.Parse()

	s, err := sim.New(sim.Options{
		Level:   *levelName,
		Enemy:   *enemy,
		Target:  *target,
		Verbose: *verbose,
	})
	if err != nil {
		log.Fatal(err)
	}

	if *watch {
		if err := runWatched(s, *ticks); err != nil {
			log.Fatal(err)
		}
	} else {
		s.Run(*ticks)
	}

	report(s)
}

// runWatched steps in real time so edits to prefabs can be observed live.
// ticks <= 0 runs until interrupted.
func runWatched(s *sim.Sim, ticks int) error {
	watcher, err := prefabs.NewWatcher("prefabs", "scripts", "levels")
	if err != nil {
		return fmt.Errorf("locosim: watch: %w", err)
	}
	defer watcher.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(time.Duration(s.Dt() * float64(time.Second)))
	defer ticker.Stop()

	for ticks <= 0 || s.Stats().Ticks < ticks {
		select {
		case <-ticker.C:
			s.Step()
		case change, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := s.Apply(change); err != nil {
				log.Printf("locosim: reload %s: %v", change.Name, err)
				continue
			}
			log.Printf("locosim: reloaded %s", change.Name)
		case err, ok := <-watcher.Errors:
			if ok {
				log.Printf("locosim: watch: %v", err)
			}
		case <-interrupt:
			return nil
		}
	}
	return nil
}

func report(s *sim.Sim) {
	stats := s.Stats()
	snap := s.Snapshot()
	fmt.Printf("level=%s ticks=%d time=%.2fs jumps=%d attacks=%d hits=%d deaths=%d state_changes=%d\n",
		s.Level().Name, stats.Ticks, snap.Time, stats.Jumps, stats.Attacks, stats.Hits, stats.Deaths, stats.StateChanges)
	for _, a := range snap.Agents {
		fmt.Printf("  %s %s state=%s pos=(%.2f, %.2f) health=%.1f grounded=%v path=%d\n",
			a.Entity, a.Kind, a.State, a.Position.X, a.Position.Y, a.Health, a.Context.Grounded, len(a.Path))
	}
	if snap.HasTarget {
		fmt.Printf("  target pos=(%.2f, %.2f)\n", snap.Target.Position.X, snap.Target.Position.Y)
	}
}
