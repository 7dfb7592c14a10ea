package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"family-meal-planner/internal/app"
	"family-meal-planner/internal/config"
	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/shopping"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	application, cleanup, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	switch os.Args[1] {
	case "plan":
		runCtx, cancel := context.WithTimeout(ctx, cfg.GenerateTimeout)
		defer cancel()

		plan, list, err := application.GenerateMealPlan(runCtx)
		if err != nil {
			log.Fatalf("Plan generation failed: %v", err)
		}
		printPlan(plan)
		fmt.Println()
		printShoppingList(list)

	case "shopping-list":
		listCmd := flag.NewFlagSet("shopping-list", flag.ExitOnError)
		planID := listCmd.String("plan", "", "Plan ID (defaults to the latest plan)")
		listCmd.Parse(os.Args[2:])

		var list *shopping.List
		if *planID == "" {
			list, err = application.LatestShoppingList(ctx)
		} else {
			list, err = application.ShoppingList(ctx, *planID)
		}
		if err != nil {
			log.Fatalf("Failed to fetch shopping list: %v", err)
		}
		printShoppingList(list)

	case "add-preference":
		prefCmd := flag.NewFlagSet("add-preference", flag.ExitOnError)
		dislike := prefCmd.Bool("dislike", false, "Record the food as disliked instead of liked")
		dietary := prefCmd.Bool("dietary", false, "Record a dietary requirement instead of a food")
		prefCmd.Parse(os.Args[2:])

		value := strings.Join(prefCmd.Args(), " ")
		if value == "" {
			log.Fatal("Usage: add-preference [-dislike|-dietary] <text>")
		}

		switch {
		case *dietary:
			err = application.Prefs.AddDietaryRequirement(value)
		case *dislike:
			err = application.Prefs.AddDislikedFood(value)
		default:
			err = application.Prefs.AddLikedFood(value)
		}
		if err != nil {
			log.Fatalf("Failed to save preference: %v", err)
		}
		fmt.Println("Saved.")

	case "list-preferences":
		profile := application.Prefs.Profile()
		fmt.Printf("Family: %d members", profile.Members)
		if len(profile.ChildrenAges) > 0 {
			fmt.Printf(", children aged %v", profile.ChildrenAges)
		}
		fmt.Printf("\nMeals per week: %d\n", profile.MealCount)
		fmt.Printf("Liked: %s\n", strings.Join(profile.LikedFoods, ", "))
		fmt.Printf("Disliked: %s\n", strings.Join(profile.DislikedFoods, ", "))
		fmt.Printf("Dietary: %s\n", strings.Join(profile.DietaryRequirements, ", "))

	case "set-meal-count":
		if len(os.Args) < 3 {
			log.Fatal("Usage: set-meal-count <1-7>")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("Invalid meal count %q", os.Args[2])
		}
		if err := application.Prefs.SetMealCount(n); err != nil {
			log.Fatalf("Failed to set meal count: %v", err)
		}
		fmt.Printf("Meals per week: %d\n", application.Prefs.Profile().MealCount)

	case "set-family":
		familyCmd := flag.NewFlagSet("set-family", flag.ExitOnError)
		members := familyCmd.Int("members", 2, "Number of people in the household")
		ages := familyCmd.String("children-ages", "", "Comma-separated children ages")
		familyCmd.Parse(os.Args[2:])

		var childrenAges []int
		if *ages != "" {
			for _, part := range strings.Split(*ages, ",") {
				age, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					log.Fatalf("Invalid age %q", part)
				}
				childrenAges = append(childrenAges, age)
			}
		}
		if err := application.Prefs.SetFamily(*members, childrenAges); err != nil {
			log.Fatalf("Failed to update family: %v", err)
		}
		fmt.Println("Saved.")

	case "history":
		plans, err := application.History.All(ctx)
		if err != nil {
			log.Fatalf("Failed to load history: %v", err)
		}
		if len(plans) == 0 {
			fmt.Println("No meal plans yet.")
			return
		}
		for _, p := range plans {
			fmt.Printf("%s  week of %s  %s\n", p.ID, p.WeekStart, strings.Join(p.MealNames(), ", "))
		}

	case "import-recipe":
		if len(os.Args) < 3 {
			log.Fatal("Usage: import-recipe <url>")
		}
		runCtx, cancel := context.WithTimeout(ctx, cfg.GenerateTimeout)
		defer cancel()

		imported, err := application.ImportRecipe(runCtx, os.Args[2])
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %q (%d ingredients, %d steps). Added to liked foods.\n",
			imported.Name, len(imported.Ingredients), len(imported.Recipe.Instructions))

	case "submit-cart":
		cartCmd := flag.NewFlagSet("submit-cart", flag.ExitOnError)
		planID := cartCmd.String("plan", "", "Plan ID (defaults to the latest plan)")
		cartCmd.Parse(os.Args[2:])

		id := *planID
		if id == "" {
			latest, err := application.History.Latest(ctx)
			if err != nil || latest == nil {
				log.Fatal("No meal plans to submit.")
			}
			id = latest.ID
		}

		result, err := application.SubmitCart(ctx, id)
		if err != nil {
			log.Fatalf("Cart submission failed: %v", err)
		}
		fmt.Printf("Cart: %s\n", result.Message)
		fmt.Printf("Added %d items, %d not found. Total £%.2f\n",
			len(result.ItemsAdded), len(result.ItemsNotFound), result.TotalPrice)
		if result.CartURL != "" {
			fmt.Printf("Review at %s\n", result.CartURL)
		}

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.Metrics.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printPlan(plan *planner.MealPlan) {
	fmt.Printf("Meal plan %s, week of %s\n\n", plan.ID, plan.WeekStart)
	for _, d := range plan.Days {
		var tags []string
		if d.ContainsOilyFish {
			tags = append(tags, "oily fish")
		}
		if d.IsRemixed {
			tags = append(tags, "remix")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = fmt.Sprintf(" [%s]", strings.Join(tags, ", "))
		}
		fmt.Printf("%-10s %s%s\n", d.Day, d.Meal, suffix)
		if d.Description != "" {
			fmt.Printf("           %s\n", d.Description)
		}
	}
}

func printShoppingList(list *shopping.List) {
	fmt.Printf("Shopping list for plan %s\n", list.PlanID)
	current := ""
	for _, item := range list.Items {
		if item.Category != current {
			current = item.Category
			fmt.Printf("\n%s\n", strings.ToUpper(strings.ReplaceAll(current, "_", " ")))
		}
		fmt.Printf("  %s - %g %s\n", item.Name, float64(item.Quantity), item.Unit)
	}
}

func printUsage() {
	fmt.Println("Usage: family-meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate next week's meal plan and shopping list")
	fmt.Println("  shopping-list      Show the shopping list for a plan (-plan <id>)")
	fmt.Println("  add-preference     Record a liked food (-dislike / -dietary for the others)")
	fmt.Println("  list-preferences   Show the family profile")
	fmt.Println("  set-meal-count     Set how many meals to plan per week (1-7)")
	fmt.Println("  set-family         Update household size (-members N -children-ages 6,9)")
	fmt.Println("  history            List all generated meal plans")
	fmt.Println("  import-recipe      Import a recipe from a URL")
	fmt.Println("  submit-cart        Send a shopping list to the grocery cart (-plan <id>)")
	fmt.Println("  metrics-cleanup    Remove old metric records (-days N)")
}
