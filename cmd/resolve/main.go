package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"bidlens.app/resolver/internal/model"
	"bidlens.app/resolver/internal/resolver"
	"bidlens.app/resolver/internal/sam"
	"bidlens.app/resolver/internal/store"
)

func main() {
	ctx := context.Background()

	// Load .env file (ignore error if not found)
	_ = godotenv.Load()

	apiKey := os.Getenv("SAM_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SAM_API_KEY is required")
		os.Exit(1)
	}
	baseURL := getEnv("SAM_BASE_URL", "https://api.sam.gov/opportunities/v2/search")
	remote := sam.New(sam.Config{BaseURL: baseURL, APIKey: apiKey})

	// Primary store (optional — the pipeline degrades to remote tiers
	// when the store is unreachable)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(getEnv("AWS_REGION", "us-east-1")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load AWS config: %v\n", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint := os.Getenv("DYNAMO_ENDPOINT"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	contractStore := store.New(dynamoClient, store.Config{
		Table: getEnv("CONTRACTS_TABLE", "contracts"),
	})

	pipeline := resolver.New(contractStore, remote, resolver.Config{})

	fmt.Fprintln(os.Stderr, "\nResolver CLI ready")
	fmt.Fprintln(os.Stderr, "Enter an identifier (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		identifier := strings.TrimSpace(scanner.Text())
		if identifier == "" {
			continue
		}
		if identifier == "quit" || identifier == "exit" || identifier == "q" {
			break
		}

		trace := &resolver.Trace{}
		result, err := pipeline.Resolve(ctx, identifier, trace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Fprintln(os.Stderr, "---")
		for _, line := range trace.Lines() {
			fmt.Fprintf(os.Stderr, "  %s\n", line)
		}
		fmt.Fprintln(os.Stderr, "---")

		if result == nil {
			fmt.Printf("no contract found for %s\n\n", identifier)
			continue
		}

		printRecord(result)
		fmt.Println()
	}

	fmt.Fprintln(os.Stderr, "Goodbye!")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func printRecord(result *model.MatchResult) {
	r := result.Record
	fmt.Printf("tier:          %s\n", result.Tier)
	if result.Score != nil {
		fmt.Printf("score:         %.2f\n", *result.Score)
	}
	fmt.Printf("notice id:     %s\n", r.NoticeID)
	fmt.Printf("solicitation:  %s\n", r.SolicitationNumber)
	fmt.Printf("title:         %s\n", r.Title)
	fmt.Printf("agency:        %s\n", r.Agency)
	fmt.Printf("posted:        %s\n", r.PostedDate)
	fmt.Printf("deadline:      %s\n", r.ResponseDeadline)
	if r.NAICSCode != "" {
		fmt.Printf("naics:         %s\n", r.NAICSCode)
	}
	if r.SetAside != "" {
		fmt.Printf("set-aside:     %s\n", r.SetAside)
	}
	for _, c := range r.PointOfContact {
		fmt.Printf("contact:       %s <%s> %s\n", c.Name, c.Email, c.Phone)
	}
}
